package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

const (
	alunosPath   = "academico/alunos/"
	turmasPath   = "academico/turmas/"
	materiasPath = "academico/materias/"
)

// pageQuery returns the query for a 1-based page; page 0 means the backend default.
func pageQuery(page int) url.Values {
	if page <= 1 {
		return nil
	}
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func itemPath(collection, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("an id is required")
	}
	return collection + url.PathEscape(id) + "/", nil
}

func getOne[T any](ctx context.Context, c *Client, collection, id string) (*T, error) {
	p, err := itemPath(collection, id)
	if err != nil {
		return nil, err
	}
	var out T
	if err := c.GetJSON(ctx, p, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func getPage[T any](ctx context.Context, c *Client, collection string, query url.Values) (*Page[T], error) {
	var out Page[T]
	if err := c.GetJSON(ctx, collection, query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Alunos lists the students visible to the current user.
func (c *Client) Alunos(ctx context.Context, page int) (*Page[Aluno], error) {
	return getPage[Aluno](ctx, c, alunosPath, pageQuery(page))
}

func (c *Client) Aluno(ctx context.Context, id string) (*Aluno, error) {
	return getOne[Aluno](ctx, c, alunosPath, id)
}

// Turmas lists the classes of the user's school.
func (c *Client) Turmas(ctx context.Context, page int) (*Page[Turma], error) {
	return getPage[Turma](ctx, c, turmasPath, pageQuery(page))
}

func (c *Client) Turma(ctx context.Context, id string) (*Turma, error) {
	return getOne[Turma](ctx, c, turmasPath, id)
}

// Materias lists the subjects of the user's school.
func (c *Client) Materias(ctx context.Context, page int) (*Page[Materia], error) {
	return getPage[Materia](ctx, c, materiasPath, pageQuery(page))
}

func (c *Client) Materia(ctx context.Context, id string) (*Materia, error) {
	return getOne[Materia](ctx, c, materiasPath, id)
}
