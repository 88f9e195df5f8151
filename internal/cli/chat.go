package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/finsight-ai/finsight/internal/config"
	"github.com/finsight-ai/finsight/internal/llm"
	"github.com/finsight-ai/finsight/internal/models"
	"github.com/finsight-ai/finsight/internal/pipeline"
	"github.com/finsight-ai/finsight/internal/session"
	"github.com/finsight-ai/finsight/pkg/client"
)

// newChatCmd creates the interactive chat command.
func newChatCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant interactively",
		Long: `Start an interactive chat session. With --server the session runs against
a remote finsight server; otherwise the pipeline runs in-process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			return runChat(cmd.Context(), cfg, serverURL)
		},
	}

	cmd.Flags().String("server", "", "Base URL of a running finsight server")
	return cmd
}

// turnBackend abstracts where the turn runs: a remote server or the
// in-process pipeline.
type turnBackend interface {
	PostTurn(ctx context.Context, req client.TurnRequest) (*client.TurnResult, error)
}

func runChat(ctx context.Context, cfg *config.Config, serverURL string) error {
	var backend turnBackend
	if serverURL != "" {
		backend = client.New(serverURL)
	} else {
		local, err := newLocalBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer local.Close()
		backend = local
	}

	fmt.Println(titleStyle.Render("finsight"))
	fmt.Println(hintStyle.Render("Ask for financial data or a definition. Type 'exit' to quit."))

	sessionID := ""
	var last *models.AgentResponse

	for {
		req := client.TurnRequest{SessionID: sessionID}

		switch {
		case last != nil && last.Type == models.ResponseClarify && len(last.Options) > 0:
			var choice string
			prompt := &survey.Select{
				Message: last.Content,
				Options: last.Options,
			}
			if err := survey.AskOne(prompt, &choice); err != nil {
				return nil
			}
			req.Selection = choice
		case last != nil && last.Type == models.ResponseClarify:
			var query string
			prompt := &survey.Input{Message: last.Content}
			if err := survey.AskOne(prompt, &query); err != nil {
				return nil
			}
			if isExit(query) {
				return nil
			}
			req.DataQuery = query
		default:
			var msg string
			prompt := &survey.Input{Message: "You:"}
			if err := survey.AskOne(prompt, &msg); err != nil {
				return nil
			}
			if isExit(msg) {
				return nil
			}
			if strings.TrimSpace(msg) == "" {
				continue
			}
			req.Message = msg
		}

		result, err := backend.PostTurn(ctx, req)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("error: %v", err)))
			continue
		}
		sessionID = result.SessionID
		last = &result.Response

		fmt.Println(renderResponse(result.Response))
	}
}

func isExit(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exit", "quit":
		return true
	}
	return false
}

// localBackend runs turns in-process, mirroring the server's turn cycle.
type localBackend struct {
	store session.Store
	pipe  *pipeline.Pipeline
}

func newLocalBackend(ctx context.Context, cfg *config.Config) (*localBackend, error) {
	log, _, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, err
	}

	mgr, err := newConfigManager(cfg, log.Named("config"))
	if err != nil {
		return nil, err
	}
	runCfg := mgr.Get()

	gen, err := llm.NewChatGenerator(ctx, &runCfg, log.Named("llm"))
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	store, err := openStore(&runCfg, log)
	if err != nil {
		return nil, err
	}

	return &localBackend{
		store: store,
		pipe:  pipeline.New(gen, log.Named("pipeline")),
	}, nil
}

func (b *localBackend) PostTurn(ctx context.Context, req client.TurnRequest) (*client.TurnResult, error) {
	in := pipeline.TurnInput{Utterance: req.Message, Subject: req.DataQuery}
	if req.Selection != "" {
		format, ok := models.ParseFormat(req.Selection)
		if !ok {
			return nil, fmt.Errorf("unknown format %q", req.Selection)
		}
		in.Format = format
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	sess, err := b.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		sess = models.NewSession(sessionID)
	} else if err != nil {
		return nil, err
	}

	b.pipe.Absorb(sess, in)
	if err := b.store.Put(ctx, sess); err != nil {
		return nil, err
	}

	resp, err := b.pipe.RunTurn(ctx, sess, in)
	if putErr := b.store.Put(ctx, sess); putErr != nil && err == nil {
		err = putErr
	}
	if err != nil {
		return nil, err
	}

	return &client.TurnResult{
		SessionID:            sessionID,
		Response:             resp,
		History:              sess.History,
		VisualizationHistory: sess.VisualizationHistory,
	}, nil
}

func (b *localBackend) Close() error {
	return b.store.Close()
}
