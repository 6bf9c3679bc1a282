package agent

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bridgeware/agentbridge/internal/domain"
	"github.com/bridgeware/agentbridge/internal/platform"
)

// Doc is one uploaded document for a document Q&A turn.
type Doc struct {
	Name string
	Data []byte
}

// ChatDocs answers a query over the supplied documents. The documents are
// uploaded from memory, indexed into a throwaway vector store, and queried
// through a throwaway file_search agent. Every remote resource created for
// the turn (files, vector store, agent) is torn down before returning, on
// success and on failure.
func (o *Orchestrator) ChatDocs(ctx context.Context, query string, docs []Doc) (string, error) {
	started := time.Now()

	text, err := o.docsTurn(ctx, query, docs)
	o.record(ctx, domain.ChatTurnRequest{Message: query}, turnMode{name: "docs"},
		&domain.TurnResult{Content: text}, 0, err, time.Since(started))
	if err != nil {
		o.log.Error().Err(err).Msg("docs turn failed")
		return "", err
	}
	o.log.Info().Int("docs", len(docs)).Dur("elapsed", time.Since(started)).Msg("docs turn completed")
	return text, nil
}

func (o *Orchestrator) docsTurn(ctx context.Context, query string, docs []Doc) (string, error) {
	if query == "" {
		return "", &domain.ValidationError{Msg: "no query found in request"}
	}
	if len(docs) == 0 {
		return "", &domain.ValidationError{Msg: "no documents found in request"}
	}

	trace := &StepTrace{}
	var fileIDs []string
	defer func() {
		cleanupCtx := context.WithoutCancel(ctx)
		for _, id := range fileIDs {
			if err := o.client.DeleteFile(cleanupCtx, id); err != nil {
				o.log.Warn().Err(err).Str("fileId", id).Msg("could not delete docs file")
			}
		}
	}()

	for _, doc := range docs {
		file, err := o.client.UploadFile(ctx, filepath.Base(doc.Name), doc.Data)
		if err != nil {
			return "", err
		}
		fileIDs = append(fileIDs, file.ID)
		trace.Add("uploaded %s as %s", doc.Name, file.ID)
	}

	vs, err := o.client.CreateVectorStore(ctx, "docs-"+uuid.NewString()[:8], fileIDs)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := o.client.DeleteVectorStore(context.WithoutCancel(ctx), vs.ID); err != nil {
			o.log.Warn().Err(err).Str("storeId", vs.ID).Msg("could not delete vector store")
		}
	}()
	trace.Add("vector store %s", vs.ID)

	created, err := o.client.CreateAgent(ctx, platform.AgentSpec{
		Name:         "docs-" + uuid.NewString()[:8],
		Model:        o.cfg.Platform.Model,
		Instructions: o.cfg.Platform.Instructions,
		Tools:        []platform.ToolSpec{platform.FileSearchTool()},
	})
	if err != nil {
		return "", err
	}
	defer func() {
		if err := o.client.DeleteAgent(context.WithoutCancel(ctx), created.ID); err != nil {
			o.log.Warn().Err(err).Str("agentId", created.ID).Msg("could not delete docs agent")
		}
	}()

	thread, err := o.client.CreateThread(ctx, platform.ThreadSpec{VectorStoreIDs: []string{vs.ID}})
	if err != nil {
		return "", err
	}
	if _, err := o.client.CreateMessage(ctx, thread.ID, platform.MessageSpec{Role: "user", Content: query}); err != nil {
		return "", err
	}

	exec := NewExecutor(o.client, o.tools, o.cfg.Run, o.log)
	execRes, err := exec.Execute(ctx, thread.ID, created.ID, platform.RunOptions{}, trace)
	if err != nil {
		return "", err
	}

	content, _, _, err := o.extract(ctx, thread.ID, execRes)
	return content, err
}
