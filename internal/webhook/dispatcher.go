package webhook

import (
	"context"
	"fmt"
	"log/slog"

	"kaibot/internal/domain"
)

const (
	imagePreamble = "The user have sent an image, verify if it's related to a meal or workout and process it accordingly. " +
		"If it's a meal, echo to the user the meal's name, calories, nutrients, ingredients you see, etc, estimate the quantity. " +
		"Log the meal in the database. " +
		"If it's a workout, echo to the user the workout's name, duration, calories burned, etc. " +
		"Log the workout in the database."
	documentPreamble = "The user have sent a document, scan through it, verify if it's related to a meal or workout and process it accordingly."
	noCaption        = "No caption provided."
)

// AgentRunner runs one agent exchange. The transcript argument and result are
// the opaque serialized history; a nil result transcript means the exchange
// should not be persisted.
type AgentRunner interface {
	Run(ctx context.Context, prompt []domain.ContentPart, history []byte) (string, []byte, error)
}

// Dispatcher turns one webhook update into at most one agent run and at most
// one reply to the originating chat.
type Dispatcher struct {
	agent       AgentRunner
	sender      domain.Sender
	files       domain.FileFetcher
	transcriber domain.Transcriber
	memory      domain.TranscriptStore
	logger      *slog.Logger
}

func NewDispatcher(agent AgentRunner, sender domain.Sender, files domain.FileFetcher, transcriber domain.Transcriber, memory domain.TranscriptStore, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		agent:       agent,
		sender:      sender,
		files:       files,
		transcriber: transcriber,
		memory:      memory,
		logger:      logger,
	}
}

// Process handles one update end to end: build the prompt for the message
// variant, run the agent with today's history, reply, persist the transcript.
func (d *Dispatcher) Process(ctx context.Context, upd domain.Update) error {
	msg := upd.Message
	kind := msg.Kind()
	d.logger.Info("processing update", "update_id", upd.UpdateID, "chat_id", msg.Chat.ID, "kind", kind.String())

	switch kind {
	case domain.KindText:
		return d.runAndReply(ctx, msg.Chat.ID, []domain.ContentPart{domain.TextPart(msg.Text)})

	case domain.KindImage:
		data, err := d.files.GetFile(ctx, msg.Photos[0].FileID)
		if err != nil {
			return fmt.Errorf("fetch photo: %w", err)
		}
		caption := noCaption
		if msg.Caption != "" {
			caption = "User provided this caption to the image:\n" + msg.Caption
		}
		prompt := []domain.ContentPart{
			domain.TextPart(imagePreamble),
			domain.TextPart(caption),
			domain.AttachmentPart(data, "image/png", ""),
		}
		return d.runAndReply(ctx, msg.Chat.ID, prompt)

	case domain.KindVoice:
		data, err := d.files.GetFile(ctx, msg.Voice.FileID)
		if err != nil {
			return fmt.Errorf("fetch voice: %w", err)
		}
		text, err := d.transcriber.Transcribe(ctx, data, msg.Voice.MimeType)
		if err != nil {
			return fmt.Errorf("transcribe voice: %w", err)
		}
		// A transcribed voice note continues down the text path, even when
		// the transcription comes back empty.
		return d.runAndReply(ctx, msg.Chat.ID, []domain.ContentPart{domain.TextPart(text)})

	case domain.KindDocument:
		data, err := d.files.GetFile(ctx, msg.Document.FileID)
		if err != nil {
			return fmt.Errorf("fetch document: %w", err)
		}
		prompt := []domain.ContentPart{
			domain.TextPart(documentPreamble),
			domain.AttachmentPart(data, msg.Document.MimeType, msg.Document.FileName),
		}
		return d.runAndReply(ctx, msg.Chat.ID, prompt)

	default:
		d.logger.Debug("ignoring unsupported message variant", "update_id", upd.UpdateID)
		return nil
	}
}

func (d *Dispatcher) runAndReply(ctx context.Context, chatID int64, prompt []domain.ContentPart) error {
	history, err := d.memory.Transcript(ctx)
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	output, transcript, err := d.agent.Run(ctx, prompt, history)
	if err != nil {
		return fmt.Errorf("agent run: %w", err)
	}

	if err := d.sender.SendMessage(ctx, chatID, output); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	if err := d.memory.SaveTranscript(ctx, transcript); err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}
