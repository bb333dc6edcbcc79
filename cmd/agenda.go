package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/habedi/escola/client"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/habedi/escola/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func agendasCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agendas",
		Short: "Browse and write students' daily agendas",
	}
	cmd.AddCommand(agendaListCmd(a), agendaShowCmd(a), agendaCreateCmd(a))
	return cmd
}

func agendaListCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agendas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidatePage(page); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}
			result, err := a.client.Agendas(cmd.Context(), page)
			if err != nil {
				return clierr.FromAPI("list agendas", err)
			}
			if len(result.Results) == 0 {
				cmd.Println("No agendas found.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Date", "Student", "Activities")
			for _, ag := range result.Results {
				student := "-"
				if ag.Aluno != nil {
					student = ag.Aluno.NomeCompleto
				}
				table.Append([]string{ag.ID.String(), ag.Data.String(), student, fmt.Sprint(len(ag.Atividades))})
			}
			table.Render()
			printPageFooter(cmd, result.Count, page, result.HasNext())
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")
	return cmd
}

func agendaShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one agenda with its activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			ag, err := a.client.Agenda(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("show agenda "+args[0], err)
			}
			printAgenda(cmd, ag)
			return nil
		},
	}
}

// agendaCreateCmd writes an agenda. Activities are given as "tipo|HH:MM|observacao".
func agendaCreateCmd(a *app) *cobra.Command {
	var alunoID, data, obs string
	var atividades []string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a daily agenda for a student",
		Example: `  escola agendas create --aluno 3f1c... --atividade "Almoço|12:00|Comeu tudo" \
      --atividade "Soneca|13:30|Dormiu 1h" --obs "Dia tranquilo"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := client.NovaAgenda{
				AlunoID:              strings.TrimSpace(alunoID),
				Data:                 data,
				ObservacoesProfessor: obs,
			}
			for _, raw := range atividades {
				at, err := parseAtividade(raw)
				if err != nil {
					return clierr.New(clierr.Validation, err.Error(), err)
				}
				in.Atividades = append(in.Atividades, at)
			}
			if in.Data == "" {
				in.Data = time.Now().Format(validation.DateLayout)
			}

			if _, err := a.requireUser(); err != nil {
				return err
			}
			ag, err := a.client.CreateAgenda(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("create the agenda", err)
			}
			log.Info().Str("agenda_id", ag.ID.String()).Msg("Agenda created")
			cmd.Println("Agenda created.")
			printAgenda(cmd, ag)
			return nil
		},
	}

	cmd.Flags().StringVar(&alunoID, "aluno", "", "ID of the student")
	cmd.Flags().StringVar(&data, "data", "", "Date of the agenda, YYYY-MM-DD (default today)")
	cmd.Flags().StringArrayVar(&atividades, "atividade", nil, `Activity as "tipo|HH:MM|observacao" (repeatable)`)
	cmd.Flags().StringVar(&obs, "obs", "", "Teacher's notes for the day")
	_ = cmd.MarkFlagRequired("aluno")
	return cmd
}

func parseAtividade(raw string) (client.Atividade, error) {
	parts := strings.SplitN(raw, "|", 3)
	if len(parts) != 3 {
		return client.Atividade{}, fmt.Errorf("invalid activity %q: expected tipo|HH:MM|observacao", raw)
	}
	return client.Atividade{
		Tipo:       strings.TrimSpace(parts[0]),
		Horario:    strings.TrimSpace(parts[1]),
		Observacao: strings.TrimSpace(parts[2]),
	}, nil
}

func printAgenda(cmd *cobra.Command, ag *client.Agenda) {
	cmd.Println("ID:", ag.ID)
	cmd.Println("Date:", ag.Data)
	if ag.Aluno != nil {
		cmd.Println("Student:", ag.Aluno.NomeCompleto)
	}
	if ag.ObservacoesProfessor != nil && *ag.ObservacoesProfessor != "" {
		cmd.Println("Notes:", *ag.ObservacoesProfessor)
	}
	if len(ag.Atividades) == 0 {
		return
	}
	table := newTable(cmd.OutOrStdout(), "Time", "Activity", "Note")
	for _, at := range ag.Atividades {
		table.Append([]string{at.Horario, at.Tipo, oneLine(at.Observacao, 80)})
	}
	table.Render()
}
