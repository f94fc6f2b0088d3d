package worker

import (
	"context"

	"ecshop/internal/domain/task"
	"ecshop/internal/infra/mail"
	"ecshop/internal/usecase"
)

// email.send
func EmailHandler(sender mail.Sender) HandlerFunc {
	return func(ctx context.Context, t task.Task) error {
		var p task.EmailPayload
		if err := t.Decode(&p); err != nil {
			return err
		}
		return sender.Send(ctx, mail.Message{
			From:    p.From,
			To:      p.To,
			Subject: p.Subject,
			Body:    p.Body,
		})
	}
}

type Importer interface {
	Import(ctx context.Context, in usecase.ImportInput) (usecase.ImportResult, error)
}

// catalog.import
// フィード側の問題（ファイル無し・構文・データ）は再試行しても直らないので成功扱いにする
func ImportHandler(imp Importer) HandlerFunc {
	return func(ctx context.Context, t task.Task) error {
		var p task.ImportPayload
		if err := t.Decode(&p); err != nil {
			return err
		}
		_, err := imp.Import(ctx, usecase.ImportInput{Source: p.Source, ActorUserID: p.ActorUserID})
		if ie, ok := usecase.AsImportError(err); ok && ie.Kind != usecase.ImportUnknown {
			return nil
		}
		return err
	}
}
