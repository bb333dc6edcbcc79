package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/habedi/escola/client"
	"github.com/habedi/escola/pkg/clierr"
	"github.com/habedi/escola/pkg/hasher"
	"github.com/habedi/escola/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const defaultDownloadThreads = 4

func momentosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "momentos",
		Short: "Browse the moments feed",
	}
	cmd.AddCommand(
		momentoListCmd(a),
		momentoShowCmd(a),
		momentoCreateCmd(a),
		likeCmd(a, "moment", a.curtirMomento),
		unlikeCmd(a, "moment", a.descurtirMomento),
		commentCmd(a, "moment", a.comentarMomento),
		momentoDownloadCmd(a),
	)
	return cmd
}

func comunicadosCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comunicados",
		Short: "Browse and publish announcements",
	}
	cmd.AddCommand(
		comunicadoListCmd(a),
		comunicadoShowCmd(a),
		comunicadoCreateCmd(a),
		likeCmd(a, "announcement", a.curtirComunicado),
		unlikeCmd(a, "announcement", a.descurtirComunicado),
		commentCmd(a, "announcement", a.comentarComunicado),
	)
	return cmd
}

// Method values on the client cannot be taken at construction time, the client is built later.
func (a *app) curtirMomento(cmd *cobra.Command, id string) error {
	return a.client.CurtirMomento(cmd.Context(), id)
}

func (a *app) descurtirMomento(cmd *cobra.Command, id string) error {
	return a.client.DescurtirMomento(cmd.Context(), id)
}

func (a *app) comentarMomento(cmd *cobra.Command, id, texto string) (*client.Comentario, error) {
	return a.client.ComentarMomento(cmd.Context(), id, texto)
}

func (a *app) curtirComunicado(cmd *cobra.Command, id string) error {
	return a.client.CurtirComunicado(cmd.Context(), id)
}

func (a *app) descurtirComunicado(cmd *cobra.Command, id string) error {
	return a.client.DescurtirComunicado(cmd.Context(), id)
}

func (a *app) comentarComunicado(cmd *cobra.Command, id, texto string) (*client.Comentario, error) {
	return a.client.ComentarComunicado(cmd.Context(), id, texto)
}

func likeCmd(a *app, noun string, like func(*cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "like <id>",
		Short: "Like a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			if err := like(cmd, args[0]); err != nil {
				return clierr.FromAPI("like the "+noun, err)
			}
			cmd.Println("Liked.")
			return nil
		},
	}
}

func unlikeCmd(a *app, noun string, unlike func(*cobra.Command, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "unlike <id>",
		Short: "Remove your like from a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			if err := unlike(cmd, args[0]); err != nil {
				return clierr.FromAPI("unlike the "+noun, err)
			}
			cmd.Println("Like removed.")
			return nil
		},
	}
}

func commentCmd(a *app, noun string, comment func(*cobra.Command, string, string) (*client.Comentario, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Comment on a " + noun,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			texto := strings.Join(args[1:], " ")
			if err := validation.ValidateNonEmptyString("texto", texto); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			c, err := comment(cmd, args[0], texto)
			if err != nil {
				return clierr.FromAPI("comment on the "+noun, err)
			}
			cmd.Println("Comment posted with ID", c.ID)
			return nil
		},
	}
}

func momentoListCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List moments, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidatePage(page); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}
			result, err := a.client.Momentos(cmd.Context(), page)
			if err != nil {
				return clierr.FromAPI("list moments", err)
			}
			if len(result.Results) == 0 {
				cmd.Println("No moments found.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Type", "Author", "Description", "Likes", "Comments")
			for _, m := range result.Results {
				table.Append([]string{
					m.ID.String(), orDash(m.Tipo), userName(m.Autor), oneLine(m.Descricao, 50),
					fmt.Sprint(m.TotalCurtidas), fmt.Sprint(m.TotalComentarios),
				})
			}
			table.Render()
			printPageFooter(cmd, result.Count, page, result.HasNext())
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")
	return cmd
}

func momentoShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a moment with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			m, err := a.client.Momento(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("show moment "+args[0], err)
			}
			cmd.Println("ID:", m.ID)
			cmd.Println("Author:", userName(m.Autor))
			if m.Turma != nil {
				cmd.Println("Class:", m.Turma.Nome)
			}
			cmd.Println("Type:", orDash(m.Tipo))
			cmd.Println("Description:", orDash(m.Descricao))
			if u := m.MediaURL(); u != "" {
				cmd.Println("Media:", u)
			}
			cmd.Printf("Likes: %d  Comments: %d\n", m.TotalCurtidas, m.TotalComentarios)

			comentarios, err := a.client.ComentariosMomento(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("load the comments", err)
			}
			printComentarios(cmd, comentarios, 0)
			return nil
		},
	}
}

// momentoCreateCmd posts a moment, optionally with a photo or video already on disk.
func momentoCreateCmd(a *app) *cobra.Command {
	var in client.NovoMomento
	var filePath string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Post a moment (teachers)",
		Example: `  escola momentos create --file passeio.jpg --descricao "Passeio no parque" --turma 0f8f...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			if !user.CanPostMomentos() {
				return clierr.New(clierr.Forbidden, "Only teachers can post moments.", nil)
			}
			if filePath == "" && strings.TrimSpace(in.Descricao) == "" {
				return clierr.New(clierr.Validation, "A moment needs a --file or a --descricao.", nil)
			}
			in.Tipo = strings.ToUpper(in.Tipo)

			var file io.Reader
			if filePath != "" {
				f, err := os.Open(filePath)
				if err != nil {
					return clierr.New(clierr.Validation, fmt.Sprintf("Cannot open %s: %v", filePath, err), err)
				}
				defer f.Close()
				file = f
			}

			m, err := a.client.CreateMomento(cmd.Context(), in, file, filePath)
			if err != nil {
				return clierr.FromAPI("post the moment", err)
			}
			cmd.Println("Moment posted with ID", m.ID)
			if u := m.MediaURL(); u != "" {
				cmd.Println("Media:", u)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "Photo (jpg, png, gif) or video (mp4, mov, avi) to attach, at most 10 MB")
	cmd.Flags().StringVar(&in.Tipo, "tipo", "", "FOTO or VIDEO (default from the file extension)")
	cmd.Flags().StringVar(&in.Descricao, "descricao", "", "Description")
	cmd.Flags().StringVar(&in.TurmaID, "turma", "", "Class the moment belongs to (ID)")
	cmd.Flags().StringArrayVar(&in.AlunosIDs, "aluno", nil, "Student in the moment (ID, repeatable)")
	cmd.Flags().StringVar(&in.DataMomento, "data", "", "Date of the moment, YYYY-MM-DD (default today)")
	return cmd
}

// momentoDownloadCmd saves moment media, either one moment by ID or every moment on a page.
func momentoDownloadCmd(a *app) *cobra.Command {
	var page, threads int
	var dir, hashAlgo string
	var overwrite, showProgress bool

	cmd := &cobra.Command{
		Use:   "download [id]",
		Short: "Download the photos and videos of moments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if hashAlgo != "" && !hasher.Supported(hashAlgo) {
				return clierr.New(clierr.Validation, fmt.Sprintf("Unsupported hash algorithm %q; use one of %s.",
					hashAlgo, strings.Join(hasher.Algorithms, ", ")), nil)
			}
			if threads < 1 || threads > 16 {
				return clierr.New(clierr.Validation, "Number of threads must be between 1 and 16.", nil)
			}
			if err := validation.ValidatePage(page); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}

			opts := client.DownloadOptions{Dir: dir, HashAlgo: hashAlgo, Overwrite: overwrite}
			if showProgress {
				opts.Progress = cmd.ErrOrStderr()
			}

			if len(args) == 1 {
				m, err := a.client.Momento(cmd.Context(), args[0])
				if err != nil {
					return clierr.FromAPI("load moment "+args[0], err)
				}
				res, err := a.client.DownloadMomentoArquivo(cmd.Context(), m, opts)
				if err != nil {
					return downloadError(m.ID, err)
				}
				printDownload(cmd, *res)
				return nil
			}

			result, err := a.client.Momentos(cmd.Context(), page)
			if err != nil {
				return clierr.FromAPI("list moments", err)
			}
			start := time.Now()
			results, failures := a.client.DownloadMomentos(cmd.Context(), result.Results, threads, opts)
			for _, res := range results {
				printDownload(cmd, res)
			}
			for _, f := range failures {
				cmd.PrintErrf("Failed to download moment %s: %v\n", f.Item.ID, f.Err)
			}
			log.Info().Int("saved", len(results)).Int("failed", len(failures)).
				Dur("elapsed", time.Since(start)).Msg("Moment downloads finished")
			if len(failures) > 0 {
				return clierr.New(clierr.Download, fmt.Sprintf("%d of %d downloads failed.",
					len(failures), len(results)+len(failures)), failures[0].Err)
			}
			if len(results) == 0 {
				cmd.Println("No moments with media on this page.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to save the files in")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page of moments to download when no ID is given")
	cmd.Flags().IntVarP(&threads, "threads", "t", defaultDownloadThreads, "Number of parallel downloads [1-16]")
	cmd.Flags().StringVar(&hashAlgo, "hash", hasher.DefaultAlgorithm, "Checksum to compute while saving; empty to skip")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace files that already exist")
	cmd.Flags().BoolVar(&showProgress, "progress", true, "Show a progress bar")
	return cmd
}

func downloadError(id client.ID, err error) error {
	if errors.Is(err, client.ErrNoMedia) {
		return clierr.New(clierr.NotFound, fmt.Sprintf("Moment %s has no media file.", id), err)
	}
	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		return clierr.FromAPI("download moment "+id.String(), err)
	}
	return clierr.New(clierr.Download, fmt.Sprintf("Failed to download moment %s: %v", id, err), err)
}

func printDownload(cmd *cobra.Command, res client.DownloadResult) {
	name := filepath.Base(res.Path)
	if res.Skipped {
		cmd.Printf("%s already exists, skipped.\n", name)
		return
	}
	if res.Checksum != "" {
		cmd.Printf("Saved %s (%d bytes, %s)\n", name, res.Bytes, res.Checksum)
		return
	}
	cmd.Printf("Saved %s (%d bytes)\n", name, res.Bytes)
}

func comunicadoListCmd(a *app) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List announcements",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidatePage(page); err != nil {
				return clierr.New(clierr.Validation, err.Error(), err)
			}
			if _, err := a.requireUser(); err != nil {
				return err
			}
			result, err := a.client.Comunicados(cmd.Context(), page)
			if err != nil {
				return clierr.FromAPI("list announcements", err)
			}
			if len(result.Results) == 0 {
				cmd.Println("No announcements found.")
				return nil
			}
			table := newTable(cmd.OutOrStdout(), "ID", "Title", "Priority", "Valid until", "Likes")
			for _, c := range result.Results {
				validade := "-"
				if c.DataValidade != nil {
					validade = c.DataValidade.String()
				}
				table.Append([]string{
					c.ID.String(), oneLine(c.Titulo, 50), orDash(c.Prioridade), validade, fmt.Sprint(c.TotalCurtidas),
				})
			}
			table.Render()
			printPageFooter(cmd, result.Count, page, result.HasNext())
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page to fetch")
	return cmd
}

func comunicadoShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an announcement with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireUser(); err != nil {
				return err
			}
			c, err := a.client.Comunicado(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("show announcement "+args[0], err)
			}
			printComunicado(cmd, c)
			comentarios, err := a.client.ComentariosComunicado(cmd.Context(), args[0])
			if err != nil {
				return clierr.FromAPI("load the comments", err)
			}
			printComentarios(cmd, comentarios, 0)
			return nil
		},
	}
}

func comunicadoCreateCmd(a *app) *cobra.Command {
	var in client.NovoComunicado
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Publish an announcement (teachers and school admins)",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireUser()
			if err != nil {
				return err
			}
			if !user.CanPublish() {
				return clierr.New(clierr.Forbidden, "Only teachers and school admins can publish announcements.", nil)
			}
			if in.DataValidade != "" {
				if _, err := time.Parse(validation.DateLayout, in.DataValidade); err != nil {
					return clierr.New(clierr.Validation, "Valid-until date must use the YYYY-MM-DD format.", err)
				}
			}
			c, err := a.client.CreateComunicado(cmd.Context(), in)
			if err != nil {
				return clierr.FromAPI("publish the announcement", err)
			}
			log.Info().Str("comunicado_id", c.ID.String()).Msg("Announcement published")
			cmd.Println("Announcement published.")
			printComunicado(cmd, c)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Titulo, "titulo", "", "Title")
	cmd.Flags().StringVar(&in.Conteudo, "conteudo", "", "Body text")
	cmd.Flags().StringVar(&in.TurmaID, "turma", "", "Restrict to one class (ID); the whole school otherwise")
	cmd.Flags().StringVar(&in.DataValidade, "validade", "", "Last day the announcement is relevant, YYYY-MM-DD")
	cmd.Flags().StringVar(&in.Prioridade, "prioridade", "", "Priority as understood by the server")
	_ = cmd.MarkFlagRequired("titulo")
	_ = cmd.MarkFlagRequired("conteudo")
	return cmd
}

func printComunicado(cmd *cobra.Command, c *client.Comunicado) {
	cmd.Println("ID:", c.ID)
	cmd.Println("Title:", c.Titulo)
	cmd.Println("Author:", userName(c.Autor))
	if c.Turma != nil {
		cmd.Println("Class:", c.Turma.Nome)
	}
	if c.Prioridade != "" {
		cmd.Println("Priority:", c.Prioridade)
	}
	if c.DataValidade != nil {
		cmd.Println("Valid until:", c.DataValidade)
	}
	cmd.Println()
	cmd.Println(c.Conteudo)
	cmd.Println()
	cmd.Printf("Likes: %d  Comments: %d\n", c.TotalCurtidas, c.TotalComentarios)
}
