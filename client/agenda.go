package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/habedi/escola/pkg/validation"
)

const agendasPath = "comunicacao/agendas/"

const maxTipoLength = 100

// Validate runs the checks the backend would reject, so bad input never leaves the process.
// now is the reference for the not-in-the-future rule.
func (n NovaAgenda) Validate(now time.Time) error {
	var errs []error
	if err := validation.ValidateUUID("aluno_id", n.AlunoID); err != nil {
		errs = append(errs, err)
	}
	if err := validation.ValidateDate("data", n.Data, now); err != nil {
		errs = append(errs, err)
	}
	if len(n.Atividades) == 0 {
		errs = append(errs, errors.New("atividades cannot be empty"))
	}
	for i, a := range n.Atividades {
		field := fmt.Sprintf("atividades[%d]", i)
		if err := validation.ValidateNonEmptyString(field+".tipo", a.Tipo); err != nil {
			errs = append(errs, err)
		} else if len(a.Tipo) > maxTipoLength {
			errs = append(errs, fmt.Errorf("%s.tipo is longer than %d characters", field, maxTipoLength))
		}
		if err := validation.ValidateHorario(a.Horario); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		if err := validation.ValidateNonEmptyString(field+".observacao", a.Observacao); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Agendas lists daily agendas, newest first.
func (c *Client) Agendas(ctx context.Context, page int) (*Page[Agenda], error) {
	return getPage[Agenda](ctx, c, agendasPath, pageQuery(page))
}

func (c *Client) Agenda(ctx context.Context, id string) (*Agenda, error) {
	return getOne[Agenda](ctx, c, agendasPath, id)
}

// CreateAgenda validates and submits a new agenda. Only teachers may create agendas; the
// backend answers 403 otherwise.
func (c *Client) CreateAgenda(ctx context.Context, in NovaAgenda) (*Agenda, error) {
	if err := in.Validate(time.Now()); err != nil {
		return nil, &Error{Kind: ValidationError, Detail: strings.ReplaceAll(err.Error(), "\n", "; "), Err: err}
	}
	var out Agenda
	if err := c.PostJSON(ctx, agendasPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
