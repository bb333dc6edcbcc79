package cmd

import (
	"context"
	"fmt"

	"github.com/habedi/escola/client"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/habedi/escola/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// resource describes how one read-only collection is listed and shown.
type resource[T any] struct {
	use, short, noun string
	header           []string
	row              func(T) []string
	list             func(ctx context.Context, page int) (*client.Page[T], error)
	get              func(ctx context.Context, id string) (*T, error)
}

func resourceCmd[T any](a *app, r func(*client.Client) resource[T]) *cobra.Command {
	var page int
	// The client only exists once the root pre-run has connected.
	bind := func() (resource[T], error) {
		if _, err := a.requireUser(); err != nil {
			return resource[T]{}, err
		}
		return r(a.client), nil
	}
	def := r(nil)

	cmd := &cobra.Command{
		Use:   def.use,
		Short: def.short,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", def.noun),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidatePage(page); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			res, err := bind()
			if err != nil {
				return err
			}
			result, err := res.list(cmd.Context(), page)
			if err != nil {
				return clierr.FromAPI("list "+def.noun, err)
			}
			if len(result.Results) == 0 {
				cmd.Printf("No %s found.\n", def.noun)
				return nil
			}
			table := newTable(cmd.OutOrStdout(), def.header...)
			for _, item := range result.Results {
				table.Append(res.row(item))
			}
			table.Render()
			printPageFooter(cmd, result.Count, page, result.HasNext())
			log.Info().Msgf("Listed %d %s.", len(result.Results), def.noun)
			return nil
		},
	}
	listCmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: fmt.Sprintf("Show one of the %s", def.noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := bind()
			if err != nil {
				return err
			}
			item, err := res.get(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("show "+args[0], err)
			}
			table := newTable(cmd.OutOrStdout(), def.header...)
			table.Append(res.row(*item))
			table.Render()
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func alunosCmd(a *app) *cobra.Command {
	return resourceCmd(a, func(c *client.Client) resource[client.Aluno] {
		r := resource[client.Aluno]{
			use: "alunos", short: "Browse students", noun: "students",
			header: []string{"ID", "Name", "Enrollment", "Class"},
			row: func(s client.Aluno) []string {
				return []string{s.ID.String(), s.NomeCompleto, orDash(s.Matricula), idOrDash(s.Turma)}
			},
		}
		if c != nil {
			r.list, r.get = c.Alunos, c.Aluno
		}
		return r
	})
}

func turmasCmd(a *app) *cobra.Command {
	return resourceCmd(a, func(c *client.Client) resource[client.Turma] {
		r := resource[client.Turma]{
			use: "turmas", short: "Browse classes", noun: "classes",
			header: []string{"ID", "Name", "School year", "Main teacher"},
			row: func(t client.Turma) []string {
				return []string{t.ID.String(), t.Nome, fmt.Sprint(t.AnoLetivo), idOrDash(t.ProfessorPrincipal)}
			},
		}
		if c != nil {
			r.list, r.get = c.Turmas, c.Turma
		}
		return r
	})
}

func materiasCmd(a *app) *cobra.Command {
	return resourceCmd(a, func(c *client.Client) resource[client.Materia] {
		r := resource[client.Materia]{
			use: "materias", short: "Browse subjects", noun: "subjects",
			header: []string{"ID", "Name"},
			row: func(m client.Materia) []string {
				return []string{m.ID.String(), m.Nome}
			},
		}
		if c != nil {
			r.list, r.get = c.Materias, c.Materia
		}
		return r
	})
}
