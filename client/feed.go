package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/habedi/escola/pkg/validation"
)

const (
	momentosPath    = "comunicacao/momentos/"
	comunicadosPath = "comunicacao/comunicados/"
	comentariosPath = "comunicacao/comentarios/"
	pushTokensPath  = "usuarios/push-tokens/"
)

// DefaultPushPlatform is what the mobile app registers its tokens as.
const DefaultPushPlatform = "FCM"

// Momentos returns one page of the moments feed, filtered by the backend per profile.
func (c *Client) Momentos(ctx context.Context, page int) (*Page[Momento], error) {
	if err := validation.ValidatePage(page); err != nil {
		return nil, err
	}
	return getPage[Momento](ctx, c, momentosPath, feedPage(page))
}

func (c *Client) Momento(ctx context.Context, id string) (*Momento, error) {
	return getOne[Momento](ctx, c, momentosPath, id)
}

func (c *Client) CurtirMomento(ctx context.Context, id string) error {
	return c.setCurtida(ctx, momentosPath, id, true)
}

func (c *Client) DescurtirMomento(ctx context.Context, id string) error {
	return c.setCurtida(ctx, momentosPath, id, false)
}

// ComentariosMomento lists every comment of a moment, following the pagination.
func (c *Client) ComentariosMomento(ctx context.Context, id string) ([]Comentario, error) {
	return c.comentarios(ctx, "momento_id", id)
}

func (c *Client) ComentarMomento(ctx context.Context, id, texto string) (*Comentario, error) {
	target := ID(id)
	return c.comentar(ctx, NovoComentario{Momento: &target, Texto: texto})
}

// Comunicados returns one page of announcements.
func (c *Client) Comunicados(ctx context.Context, page int) (*Page[Comunicado], error) {
	if err := validation.ValidatePage(page); err != nil {
		return nil, err
	}
	return getPage[Comunicado](ctx, c, comunicadosPath, feedPage(page))
}

func (c *Client) Comunicado(ctx context.Context, id string) (*Comunicado, error) {
	return getOne[Comunicado](ctx, c, comunicadosPath, id)
}

// CreateComunicado publishes an announcement. Only teachers and school admins may publish.
func (c *Client) CreateComunicado(ctx context.Context, in NovoComunicado) (*Comunicado, error) {
	if err := validation.ValidateNonEmptyString("titulo", in.Titulo); err != nil {
		return nil, &Error{Kind: ValidationError, Detail: err.Error(), Err: err}
	}
	if err := validation.ValidateNonEmptyString("conteudo", in.Conteudo); err != nil {
		return nil, &Error{Kind: ValidationError, Detail: err.Error(), Err: err}
	}
	if in.TurmaID != "" {
		if err := validation.ValidateUUID("turma_id", in.TurmaID); err != nil {
			return nil, &Error{Kind: ValidationError, Detail: err.Error(), Err: err}
		}
	}
	var out Comunicado
	if err := c.PostJSON(ctx, comunicadosPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CurtirComunicado(ctx context.Context, id string) error {
	return c.setCurtida(ctx, comunicadosPath, id, true)
}

func (c *Client) DescurtirComunicado(ctx context.Context, id string) error {
	return c.setCurtida(ctx, comunicadosPath, id, false)
}

func (c *Client) ComentariosComunicado(ctx context.Context, id string) ([]Comentario, error) {
	return c.comentarios(ctx, "comunicado_id", id)
}

func (c *Client) ComentarComunicado(ctx context.Context, id, texto string) (*Comentario, error) {
	target := ID(id)
	return c.comentar(ctx, NovoComentario{Comunicado: &target, Texto: texto})
}

// RegisterPushToken stores a device token for push notifications. An empty platform
// registers as DefaultPushPlatform.
func (c *Client) RegisterPushToken(ctx context.Context, token, plataforma string) error {
	if err := validation.ValidateNonEmptyString("token", token); err != nil {
		return &Error{Kind: ValidationError, Detail: err.Error(), Err: err}
	}
	if plataforma == "" {
		plataforma = DefaultPushPlatform
	}
	return c.PostJSON(ctx, pushTokensPath, PushToken{Token: token, Plataforma: plataforma}, nil)
}

// feedPage always names the page, as the feed endpoints are paginated.
func feedPage(page int) url.Values {
	return url.Values{"page": []string{strconv.Itoa(page)}}
}

func (c *Client) setCurtida(ctx context.Context, collection, id string, like bool) error {
	p, err := itemPath(collection, id)
	if err != nil {
		return err
	}
	p += "curtir/"
	if like {
		return c.PostJSON(ctx, p, nil, nil)
	}
	return c.DeleteJSON(ctx, p, nil)
}

// maxComentarioPages bounds how many pages of comments are followed for one listing.
const maxComentarioPages = 50

// comentarios collects every page of comments for one target. Only the query of each next link
// is reused, so a next link built with a proxied host still reaches this origin.
func (c *Client) comentarios(ctx context.Context, filter, id string) ([]Comentario, error) {
	if id == "" {
		return nil, fmt.Errorf("an id is required")
	}
	query := url.Values{filter: []string{id}}
	var all []Comentario
	for i := 0; i < maxComentarioPages; i++ {
		page, err := getPage[Comentario](ctx, c, comentariosPath, query)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasNext() {
			return all, nil
		}
		next, err := url.Parse(page.Next)
		if err != nil {
			return nil, fmt.Errorf("invalid next link %q: %w", page.Next, err)
		}
		query = next.Query()
		if query.Get(filter) == "" {
			query.Set(filter, id)
		}
	}
	return nil, fmt.Errorf("comments for %s span more than %d pages", id, maxComentarioPages)
}

func (c *Client) comentar(ctx context.Context, in NovoComentario) (*Comentario, error) {
	if err := validation.ValidateNonEmptyString("texto", in.Texto); err != nil {
		return nil, &Error{Kind: ValidationError, Detail: err.Error(), Err: err}
	}
	var out Comentario
	if err := c.PostJSON(ctx, comentariosPath, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
