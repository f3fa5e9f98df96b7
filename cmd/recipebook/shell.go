package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/book"
	"github.com/hammamikhairi/recipebook/internal/conversation"
	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive shell (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShell(cmd.Context())
		},
	}
}

// printer is the output side of the shell. *display.UI implements it.
type printer interface {
	Println(a ...interface{})
	PrintChat(text string)
	PrintBlock(text string)
	PrintHint(text string)
	PrintUrgent(text string)
}

// editor is the part of the recipe book the shell drives.
type editor interface {
	Recipes() []domain.Recipe
	State() domain.EditState
	Add() domain.Recipe
	Edit(id int64) (domain.Recipe, error)
	Update(fn func(r *domain.Recipe)) (domain.Recipe, error)
	Cancel()
	Save(ctx context.Context) (domain.Recipe, error)
	Delete(ctx context.Context, id int64) error
	Rescale(ctx context.Context, id int64, n int) (domain.Recipe, error)
}

var _ editor = (*book.Book)(nil)

func (a *app) runShell(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ui := display.NewUI(a.book)
	a.printFn = ui.Printf

	sh := &shell{
		book:   a.book,
		parser: conversation.NewKeywordParser(a.log.Named("parser")),
		log:    a.log.Named("shell"),
		out:    ui,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	go func() {
		ui.WaitReady()
		sh.run(ctx, ui.InputChan())
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		a.log.Error("display: %v", err)
		return err
	}
	return nil
}

type shell struct {
	book   editor
	parser domain.IntentParser
	log    *logger.Logger
	out    printer
}

func (s *shell) run(ctx context.Context, input <-chan string) {
	s.out.PrintChat("Your recipes:")
	s.out.PrintBlock(display.RenderList(s.book.Recipes()))

	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return
		case line, ok = <-input:
			if !ok {
				return
			}
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if done := s.handleLine(ctx, line); done {
			return
		}
	}
}

// handleLine parses and executes one line. It reports whether the shell
// should exit.
func (s *shell) handleLine(ctx context.Context, line string) bool {
	intent, err := s.parser.Parse(ctx, line, s.book.State())
	if err != nil {
		s.out.PrintUrgent(err.Error())
		return false
	}
	s.log.Debug("intent: %s (args=%v payload=%q)", intent.Type, intent.Args, intent.Payload)

	if err := s.handleIntent(ctx, intent); err != nil {
		s.report(err)
	}
	return intent.Type == domain.IntentQuit
}

func (s *shell) report(err error) {
	switch {
	case book.IsPersistWarning(err):
		// Already shown by the notifier.
	case errors.Is(err, domain.ErrNotEditing):
		s.out.PrintHint("Nothing is being edited. Use \"add\" or \"edit N\" first.")
	default:
		s.out.PrintUrgent(err.Error())
	}
}

func (s *shell) handleIntent(ctx context.Context, intent *domain.Intent) error {
	switch intent.Type {
	case domain.IntentHelp:
		s.out.PrintBlock(display.HelpText())
	case domain.IntentList:
		s.out.PrintBlock(display.RenderList(s.book.Recipes()))
	case domain.IntentShow:
		r, err := byPosition(s.book.Recipes(), intent.Args[0])
		if err != nil {
			return err
		}
		s.out.PrintBlock(display.RenderRecipe(r))
	case domain.IntentAdd:
		s.book.Add()
		s.showBuffer()
		s.out.PrintHint("Set fields with name / ingredient / instructions / servings, then save.")
	case domain.IntentEdit:
		r, err := byPosition(s.book.Recipes(), intent.Args[0])
		if err != nil {
			return err
		}
		if _, err := s.book.Edit(r.ID); err != nil {
			return err
		}
		s.showBuffer()
	case domain.IntentSetName:
		return s.update(func(r *domain.Recipe) { r.Name = intent.Payload })
	case domain.IntentSetInstructions:
		return s.update(func(r *domain.Recipe) { r.Instructions = intent.Payload })
	case domain.IntentAddIngredient:
		ing := *intent.Ingredient
		return s.update(func(r *domain.Recipe) { r.Ingredients = append(r.Ingredients, ing) })
	case domain.IntentDropIngredient:
		return s.dropIngredient(intent.Args[0])
	case domain.IntentSetServings:
		n := intent.Args[0]
		return s.update(func(r *domain.Recipe) { r.Servings = n })
	case domain.IntentSave:
		saved, err := s.book.Save(ctx)
		if err != nil && !book.IsPersistWarning(err) {
			return err
		}
		s.out.PrintChat(fmt.Sprintf("Saved %s.", saved.Name))
		return err
	case domain.IntentCancel:
		if !domain.DialogOpen(s.book.State()) {
			return domain.ErrNotEditing
		}
		s.book.Cancel()
		s.out.PrintChat("Edits discarded.")
	case domain.IntentDelete:
		return s.delete(ctx, intent.Args)
	case domain.IntentScale:
		r, err := byPosition(s.book.Recipes(), intent.Args[0])
		if err != nil {
			return err
		}
		scaled, err := s.book.Rescale(ctx, r.ID, intent.Args[1])
		if err != nil && !book.IsPersistWarning(err) {
			return err
		}
		s.out.PrintBlock(display.RenderRecipe(scaled))
		return err
	case domain.IntentQuit:
		if ed, ok := s.book.State().(domain.Editing); ok {
			s.out.PrintHint(fmt.Sprintf("Unsaved edits to %q were discarded.", ed.Buffer.Name))
			s.book.Cancel()
		}
		s.out.PrintChat("Bye!")
	default:
		s.out.PrintHint(fmt.Sprintf("Didn't catch %q. Type 'help' for commands.", intent.Payload))
	}
	return nil
}

func (s *shell) update(fn func(r *domain.Recipe)) error {
	if _, err := s.book.Update(fn); err != nil {
		return err
	}
	s.showBuffer()
	return nil
}

func (s *shell) dropIngredient(n int) error {
	var bad bool
	err := s.update(func(r *domain.Recipe) {
		if n < 1 || n > len(r.Ingredients) {
			bad = true
			return
		}
		r.Ingredients = append(r.Ingredients[:n-1], r.Ingredients[n:]...)
	})
	if err == nil && bad {
		return fmt.Errorf("no ingredient %d", n)
	}
	return err
}

// delete removes recipe N, or with no argument the recipe in the buffer.
func (s *shell) delete(ctx context.Context, args []int) error {
	var id int64
	var name string
	if len(args) == 0 {
		ed, ok := s.book.State().(domain.Editing)
		if !ok {
			return domain.ErrNotEditing
		}
		id, name = ed.Buffer.ID, ed.Buffer.Name
	} else {
		r, err := byPosition(s.book.Recipes(), args[0])
		if err != nil {
			return err
		}
		id, name = r.ID, r.Name
	}
	err := s.book.Delete(ctx, id)
	if err != nil && !book.IsPersistWarning(err) {
		return err
	}
	if name == "" {
		name = "the draft"
	}
	s.out.PrintChat(fmt.Sprintf("Deleted %s.", name))
	return err
}

func (s *shell) showBuffer() {
	if ed, ok := s.book.State().(domain.Editing); ok {
		s.out.PrintBlock(display.RenderBuffer(ed))
	}
}
