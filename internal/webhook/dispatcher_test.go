package webhook

import (
	"context"
	"errors"
	"strings"
	"testing"

	"kaibot/internal/domain"
)

type fakeAgent struct {
	runs       int
	lastPrompt []domain.ContentPart
	lastHist   []byte
	output     string
	transcript []byte
	err        error
}

func (a *fakeAgent) Run(ctx context.Context, prompt []domain.ContentPart, history []byte) (string, []byte, error) {
	a.runs++
	a.lastPrompt = prompt
	a.lastHist = history
	return a.output, a.transcript, a.err
}

type fakeFiles struct {
	data map[string][]byte
	err  error
}

func (f *fakeFiles) GetFile(ctx context.Context, fileID string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.data[fileID], nil
}

type fakeTranscriber struct {
	text   string
	err    error
	called bool
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	f.called = true
	if mimeType != "audio/ogg" {
		return "", errors.New("unsupported audio MIME type")
	}
	return f.text, f.err
}

type fakeMemory struct {
	stored []byte
	saves  int
	loads  int
}

func (m *fakeMemory) SaveTranscript(ctx context.Context, raw []byte) error {
	m.saves++
	if len(raw) > 0 {
		m.stored = raw
	}
	return nil
}

func (m *fakeMemory) Transcript(ctx context.Context) ([]byte, error) {
	m.loads++
	return m.stored, nil
}

type fixture struct {
	agent       *fakeAgent
	sender      *recordingSender
	files       *fakeFiles
	transcriber *fakeTranscriber
	memory      *fakeMemory
	dispatcher  *Dispatcher
}

func newFixture() *fixture {
	f := &fixture{
		agent:       &fakeAgent{output: "Logged.", transcript: []byte(`[]`)},
		sender:      &recordingSender{},
		files:       &fakeFiles{data: map[string][]byte{}},
		transcriber: &fakeTranscriber{},
		memory:      &fakeMemory{},
	}
	f.dispatcher = NewDispatcher(f.agent, f.sender, f.files, f.transcriber, f.memory, testLogger())
	return f
}

func TestProcessText(t *testing.T) {
	f := newFixture()
	f.memory.stored = []byte(`[{"role":"user","content":"earlier"}]`)

	upd := testUpdate()
	upd.Message.Text = "I ate an apple"

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("Process: %v", err)
	}

	if f.agent.runs != 1 {
		t.Fatalf("agent ran %d times, want 1", f.agent.runs)
	}
	if len(f.agent.lastPrompt) != 1 || f.agent.lastPrompt[0].Text != "I ate an apple" {
		t.Errorf("prompt = %+v, want the text verbatim", f.agent.lastPrompt)
	}
	if string(f.agent.lastHist) != `[{"role":"user","content":"earlier"}]` {
		t.Errorf("history not passed: %q", f.agent.lastHist)
	}
	if got := f.sender.messages(); len(got) != 1 || got[0] != "Logged." {
		t.Errorf("replies = %v, want exactly one", got)
	}
	if f.memory.saves != 1 {
		t.Errorf("transcript saved %d times, want 1", f.memory.saves)
	}
}

func TestProcessImageWithCaption(t *testing.T) {
	f := newFixture()
	f.files.data["photo1"] = []byte{0xff, 0xd8, 0xff}

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Caption = "my lunch"
	upd.Message.Photos = []domain.PhotoSize{{FileID: "photo1"}, {FileID: "photo2"}}

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("Process: %v", err)
	}

	prompt := f.agent.lastPrompt
	if len(prompt) != 3 {
		t.Fatalf("prompt has %d parts, want preamble, caption, image", len(prompt))
	}
	if !strings.Contains(prompt[0].Text, "sent an image") {
		t.Errorf("preamble = %q", prompt[0].Text)
	}
	if !strings.Contains(prompt[1].Text, "my lunch") {
		t.Errorf("caption part = %q", prompt[1].Text)
	}
	if prompt[2].MimeType != "image/png" || len(prompt[2].Data) == 0 {
		t.Errorf("image part = %+v", prompt[2])
	}
}

func TestProcessImageWithoutCaption(t *testing.T) {
	f := newFixture()
	f.files.data["photo1"] = []byte{0xff}

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Photos = []domain.PhotoSize{{FileID: "photo1"}}

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatal(err)
	}
	if f.agent.lastPrompt[1].Text != noCaption {
		t.Errorf("caption part = %q, want the explicit marker", f.agent.lastPrompt[1].Text)
	}
}

func TestProcessVoice(t *testing.T) {
	f := newFixture()
	f.files.data["voice1"] = []byte("OggS")
	f.transcriber.text = "two eggs for breakfast"

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Voice = &domain.Voice{FileID: "voice1", MimeType: "audio/ogg", Duration: 3}

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// The transcription continues down the text path.
	if len(f.agent.lastPrompt) != 1 || f.agent.lastPrompt[0].Text != "two eggs for breakfast" {
		t.Errorf("prompt = %+v", f.agent.lastPrompt)
	}
	if got := f.sender.messages(); len(got) != 1 {
		t.Errorf("replies = %v, want exactly one", got)
	}
}

func TestProcessVoiceEmptyTranscription(t *testing.T) {
	f := newFixture()
	f.files.data["voice1"] = []byte("OggS")
	f.transcriber.text = ""

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Voice = &domain.Voice{FileID: "voice1", MimeType: "audio/ogg", Duration: 1}

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// An empty transcription still reaches the agent as a text turn.
	if f.agent.runs != 1 {
		t.Fatalf("agent ran %d times, want 1", f.agent.runs)
	}
	if len(f.agent.lastPrompt) != 1 || f.agent.lastPrompt[0].Text != "" {
		t.Errorf("prompt = %+v, want one empty text part", f.agent.lastPrompt)
	}
	if got := f.sender.messages(); len(got) != 1 {
		t.Errorf("replies = %v, want exactly one", got)
	}
}

func TestProcessVoiceBadMimeFailsFast(t *testing.T) {
	f := newFixture()
	f.files.data["voice1"] = []byte("mp3 data")

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Voice = &domain.Voice{FileID: "voice1", MimeType: "audio/mpeg"}

	err := f.dispatcher.Process(context.Background(), upd)
	if err == nil {
		t.Fatal("expected transcription error to surface")
	}
	if f.agent.runs != 0 {
		t.Error("agent must not run when transcription fails")
	}
	if got := f.sender.messages(); len(got) != 0 {
		t.Errorf("no reply expected, got %v", got)
	}
}

func TestProcessDocument(t *testing.T) {
	f := newFixture()
	f.files.data["doc1"] = []byte("%PDF-1.7")

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Document = &domain.Document{FileID: "doc1", FileName: "labs.pdf", MimeType: "application/pdf"}

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("Process: %v", err)
	}

	prompt := f.agent.lastPrompt
	if len(prompt) != 2 {
		t.Fatalf("prompt has %d parts, want preamble and attachment", len(prompt))
	}
	if !strings.Contains(prompt[0].Text, "sent a document") {
		t.Errorf("preamble = %q", prompt[0].Text)
	}
	if prompt[1].MimeType != "application/pdf" || prompt[1].FileName != "labs.pdf" {
		t.Errorf("document part = %+v", prompt[1])
	}
}

func TestProcessUnknownVariantIsNoOp(t *testing.T) {
	f := newFixture()

	upd := testUpdate()
	upd.Message.Text = "" // sticker, location etc. decode to an empty message

	if err := f.dispatcher.Process(context.Background(), upd); err != nil {
		t.Fatalf("unknown variant must not error: %v", err)
	}
	if f.agent.runs != 0 {
		t.Error("agent must not run")
	}
	if got := f.sender.messages(); len(got) != 0 {
		t.Errorf("no reply expected, got %v", got)
	}
	if f.memory.saves != 0 || f.memory.loads != 0 {
		t.Error("no persistence expected")
	}
}

func TestProcessFileFetchError(t *testing.T) {
	f := newFixture()
	f.files.err = errors.New("telegram 404")

	upd := testUpdate()
	upd.Message.Text = ""
	upd.Message.Photos = []domain.PhotoSize{{FileID: "gone"}}

	if err := f.dispatcher.Process(context.Background(), upd); err == nil {
		t.Fatal("expected fetch error to surface")
	}
	if f.agent.runs != 0 {
		t.Error("agent must not run without the image bytes")
	}
}
