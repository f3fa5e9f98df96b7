package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/recipebook/internal/display"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/storage"
)

// resolve maps a command-line reference to a recipe. A plain number is a
// 1-based position in the list; "#<id>" selects by id.
func resolve(rs []domain.Recipe, ref string) (domain.Recipe, error) {
	ref = strings.TrimSpace(ref)
	if strings.HasPrefix(ref, "#") {
		id, err := strconv.ParseInt(ref[1:], 10, 64)
		if err != nil {
			return domain.Recipe{}, fmt.Errorf("bad recipe id %q", ref)
		}
		idx := domain.IndexOf(rs, id)
		if idx == -1 {
			return domain.Recipe{}, fmt.Errorf("recipe %s: %w", ref, domain.ErrNotFound)
		}
		return rs[idx], nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("bad recipe number %q", ref)
	}
	return byPosition(rs, n)
}

func byPosition(rs []domain.Recipe, n int) (domain.Recipe, error) {
	if n < 1 || n > len(rs) {
		return domain.Recipe{}, fmt.Errorf("recipe %d: %w (have %d)", n, domain.ErrNotFound, len(rs))
	}
	return rs[n-1], nil
}

func newListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.out, display.RenderList(a.book.Recipes()))
			watch, _ := cmd.Flags().GetBool("watch")
			if !watch {
				return nil
			}
			return a.watchList(cmd.Context())
		},
	}
	cmd.Flags().BoolP("watch", "w", false, "Watch the store and re-list on every change")
	return cmd
}

// watchList re-reads and re-renders the collection whenever another
// process writes the slot. Only local stores can be watched.
func (a *app) watchList(ctx context.Context) error {
	w, ok := a.store.(storage.Watcher)
	if !ok {
		return fmt.Errorf("--watch needs the file or sqlite store, not %s", a.cfg.Store.Driver)
	}
	fmt.Fprintln(a.out, display.BannerStyle.Render("\nWatching for changes... (Press Ctrl+C to exit)"))
	err := w.Watch(ctx, a.cfg.Key, func() {
		if err := a.book.Load(ctx); err != nil && !errors.Is(err, domain.ErrPersist) {
			a.log.Warn("reload: %v", err)
			return
		}
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, display.RenderList(a.book.Recipes()))
	})
	return err
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show N",
		Short: "Show one recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(a.book.Recipes(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, display.RenderRecipe(r))
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Create a recipe using an interactive form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := a.book.Add()
			return a.runForm(cmd.Context(), "New recipe", draft)
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit N",
		Short: "Edit a recipe using an interactive form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(a.book.Recipes(), args[0])
			if err != nil {
				return err
			}
			buf, err := a.book.Edit(r.ID)
			if err != nil {
				return err
			}
			return a.runForm(cmd.Context(), "Edit recipe", buf)
		},
	}
}

// runForm shows the edit dialog for the open buffer and saves the result.
func (a *app) runForm(ctx context.Context, title string, buf domain.Recipe) error {
	edited, err := display.EditRecipe(title, buf)
	if errors.Is(err, display.ErrFormCancelled) {
		a.book.Cancel()
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}
	if err != nil {
		a.book.Cancel()
		return err
	}
	if _, err := a.book.Update(func(r *domain.Recipe) { *r = edited }); err != nil {
		return err
	}
	saved, err := a.book.Save(ctx)
	if err := a.warnPersist(err); err != nil {
		a.book.Cancel()
		return err
	}
	fmt.Fprintln(a.out, display.RenderRecipe(saved))
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete N",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(a.book.Recipes(), args[0])
			if err != nil {
				return err
			}
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := display.ConfirmDelete(r.Name)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.out, "Kept.")
					return nil
				}
			}
			if err := a.warnPersist(a.book.Delete(cmd.Context(), r.ID)); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s.\n", r.Name)
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newScaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scale N SERVINGS",
		Short: "Rescale a recipe to 1-10 servings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := resolve(a.book.Recipes(), args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("servings %q: %w", args[1], domain.ErrInvalidServings)
			}
			scaled, err := a.book.Rescale(cmd.Context(), r.ID, n)
			if err := a.warnPersist(err); err != nil {
				return err
			}
			fmt.Fprintln(a.out, display.RenderRecipe(scaled))
			return nil
		},
	}
}
