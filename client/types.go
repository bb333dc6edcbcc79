package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a backend primary key. Users have integer keys and everything else has UUIDs, so
// both JSON numbers and strings are accepted.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(data)
	return nil
}

func (id ID) String() string { return string(id) }

// DateLayout is the wire format of date-only fields.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// User types as assigned by the backend.
const (
	TipoAdminSistema = "ADMIN_SISTEMA"
	TipoAdminEscola  = "ADMIN_ESCOLA"
	TipoProfessor    = "PROFESSOR"
	TipoResponsavel  = "RESPONSAVEL"
)

// Escola is the school summary embedded in users and tokens.
type Escola struct {
	ID           ID     `json:"id"`
	NomeFantasia string `json:"nome_fantasia"`
}

// User is the profile returned by /usuarios/me/.
type User struct {
	ID           ID         `json:"id"`
	Email        string     `json:"email"`
	NomeCompleto string     `json:"nome_completo"`
	TipoUsuario  string     `json:"tipo_usuario"`
	Escola       *Escola    `json:"escola"`
	LastLogin    *time.Time `json:"last_login"`
	DateJoined   *time.Time `json:"date_joined"`
}

// CanPublish reports whether the user may create announcements.
func (u *User) CanPublish() bool {
	return u != nil && (u.TipoUsuario == TipoProfessor || u.TipoUsuario == TipoAdminEscola)
}

// CanPostMomentos reports whether the user may post moments; the backend allows teachers only.
func (u *User) CanPostMomentos() bool {
	return u != nil && u.TipoUsuario == TipoProfessor
}

// Aluno is a student.
type Aluno struct {
	ID           ID     `json:"id"`
	NomeCompleto string `json:"nome_completo"`
	Matricula    string `json:"matricula"`
	Turma        *ID    `json:"turma"`
	Escola       ID     `json:"escola"`
}

// Turma is a class.
type Turma struct {
	ID                 ID     `json:"id"`
	Nome               string `json:"nome"`
	AnoLetivo          int    `json:"ano_letivo"`
	ProfessorPrincipal *ID    `json:"professor_principal"`
	Escola             ID     `json:"escola"`
}

// Materia is a school subject.
type Materia struct {
	ID     ID     `json:"id"`
	Nome   string `json:"nome"`
	Escola ID     `json:"escola"`
}

// Atividade is one entry of a daily agenda.
type Atividade struct {
	Tipo       string `json:"tipo"`
	Horario    string `json:"horario"`
	Observacao string `json:"observacao"`
}

// Agenda is a student's daily activity log.
type Agenda struct {
	ID                   ID          `json:"id"`
	Aluno                *Aluno      `json:"aluno"`
	Data                 Date        `json:"data"`
	Atividades           []Atividade `json:"atividades"`
	ObservacoesProfessor *string     `json:"observacoes_professor"`
	DataCriacao          time.Time   `json:"data_criacao"`
	DataAtualizacao      time.Time   `json:"data_atualizacao"`
	Escola               ID          `json:"escola"`
}

// NovaAgenda is the payload for creating an agenda.
type NovaAgenda struct {
	AlunoID              string      `json:"aluno_id"`
	Data                 string      `json:"data"`
	Atividades           []Atividade `json:"atividades"`
	ObservacoesProfessor string      `json:"observacoes_professor,omitempty"`
}

// Curtida is a like.
type Curtida struct {
	ID          ID        `json:"id"`
	Usuario     *User     `json:"usuario"`
	DataCriacao time.Time `json:"data_criacao"`
}

// Comentario is a comment on a moment or an announcement, with its replies.
type Comentario struct {
	ID              ID           `json:"id"`
	Usuario         *User        `json:"usuario"`
	Texto           string       `json:"texto"`
	DataCriacao     time.Time    `json:"data_criacao"`
	DataAtualizacao time.Time    `json:"data_atualizacao"`
	ComentarioPai   *ID          `json:"comentario_pai"`
	Respostas       []Comentario `json:"respostas"`
}

// NovoComentario is the payload for creating a comment. Exactly one target is set.
type NovoComentario struct {
	Momento       *ID    `json:"momento,omitempty"`
	Comunicado    *ID    `json:"comunicado,omitempty"`
	Texto         string `json:"texto"`
	ComentarioPai *ID    `json:"comentario_pai,omitempty"`
}

// Moment media types.
const (
	MomentoFoto  = "FOTO"
	MomentoVideo = "VIDEO"
)

// Momento is a feed post with optional media.
type Momento struct {
	ID               ID           `json:"id"`
	Autor            *User        `json:"autor"`
	Turma            *Turma       `json:"turma"`
	Alunos           []Aluno      `json:"alunos"`
	Tipo             string       `json:"tipo"`
	Arquivo          *string      `json:"arquivo"`
	ArquivoURL       *string      `json:"arquivo_url"`
	Descricao        string       `json:"descricao"`
	DataMomento      *time.Time   `json:"data_momento"`
	TotalCurtidas    int          `json:"total_curtidas"`
	TotalComentarios int          `json:"total_comentarios"`
	Curtidas         []Curtida    `json:"curtidas"`
	Comentarios      []Comentario `json:"comentarios"`
	DataCriacao      time.Time    `json:"data_criacao"`
	DataAtualizacao  time.Time    `json:"data_atualizacao"`
	Escola           ID           `json:"escola"`
}

// NovoMomento is the form sent when posting a moment. The media file travels next to it as the
// "arquivo" part.
type NovoMomento struct {
	Tipo        string   // MomentoFoto or MomentoVideo; inferred from the file name when empty
	Descricao   string
	TurmaID     string
	AlunosIDs   []string
	DataMomento string // YYYY-MM-DD; the backend uses today when empty
}

// Comunicado is an announcement.
type Comunicado struct {
	ID               ID           `json:"id"`
	Autor            *User        `json:"autor"`
	Turma            *Turma       `json:"turma"`
	Titulo           string       `json:"titulo"`
	Conteudo         string       `json:"conteudo"`
	DataPublicacao   *time.Time   `json:"data_publicacao"`
	DataValidade     *Date        `json:"data_validade"`
	Prioridade       string       `json:"prioridade"`
	TotalCurtidas    int          `json:"total_curtidas"`
	TotalComentarios int          `json:"total_comentarios"`
	Curtidas         []Curtida    `json:"curtidas"`
	Comentarios      []Comentario `json:"comentarios"`
	Escola           ID           `json:"escola"`
}

// NovoComunicado is the payload for publishing an announcement.
type NovoComunicado struct {
	Titulo       string `json:"titulo"`
	Conteudo     string `json:"conteudo"`
	TurmaID      string `json:"turma_id,omitempty"`
	DataValidade string `json:"data_validade,omitempty"`
	Prioridade   string `json:"prioridade,omitempty"`
}

// PushToken is a device token registered for notifications.
type PushToken struct {
	Token      string `json:"token"`
	Plataforma string `json:"plataforma"`
}

// Page is one page of a list endpoint. Unpaginated endpoints return a bare JSON array, which
// decodes as a single complete page.
type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next"`
	Previous string `json:"previous"`
	Results  []T    `json:"results"`
}

func (p *Page[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}
	type envelope struct {
		Count    int     `json:"count"`
		Next     *string `json:"next"`
		Previous *string `json:"previous"`
		Results  []T     `json:"results"`
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = Page[T]{Count: env.Count, Results: env.Results}
	if env.Next != nil {
		p.Next = *env.Next
	}
	if env.Previous != nil {
		p.Previous = *env.Previous
	}
	return nil
}

// HasNext reports whether another page follows.
func (p *Page[T]) HasNext() bool { return p.Next != "" }
