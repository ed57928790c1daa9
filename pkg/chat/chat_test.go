package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/entregaveis/pkg/corpus"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

type fakeModel struct {
	answer string
	err    error
	prompt string
	calls  int
}

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	return f.answer, f.err
}

func (f *fakeModel) Name() string { return "fake" }

func testCorpus() *corpus.Corpus {
	return corpus.New("saidas",
		&corpus.Document{MeetingName: "Kickoff", PlainText: "Ana: começamos hoje"},
		&corpus.Document{MeetingName: "Retro", PlainText: strings.Repeat("r", 6000)},
	)
}

func TestSingleDocumentPrompt(t *testing.T) {
	p := SingleDocumentPrompt("Kickoff", strings.Repeat("a", SingleDocumentLimit+10), "Quem falou?")

	assert.True(t, strings.HasPrefix(p, "Você é um assistente especializado em analisar transcrições de reuniões.\n"))
	assert.Contains(t, p, "contidas na transcrição fornecida.")
	assert.Contains(t, p, "Transcrição da reunião 'Kickoff':\n")
	assert.Contains(t, p, "':\n"+strings.Repeat("a", SingleDocumentLimit)+"\n\nPergunta")
	assert.NotContains(t, p, strings.Repeat("a", SingleDocumentLimit+1))
	assert.True(t, strings.HasSuffix(p, "\n\nPergunta: Quem falou?\n\nResposta:"))
}

func TestMultiDocumentPrompt(t *testing.T) {
	docs := testCorpus().Documents()

	p := MultiDocumentPrompt(docs, "O que foi decidido?", MultiDocumentLimit)
	assert.Contains(t, p, "mencione qual reunião contém essa informação.")
	assert.Contains(t, p, "Contexto das transcrições:\n\n\nTranscrição da reunião 'Kickoff':\nAna: começamos hoje\n")
	assert.Contains(t, p, "Transcrição da reunião 'Retro':\n"+strings.Repeat("r", MultiDocumentLimit)+"\n")
	assert.NotContains(t, p, strings.Repeat("r", MultiDocumentLimit+1))
	assert.True(t, strings.HasSuffix(p, "\n\nPergunta: O que foi decidido?\n\nResposta:"))

	full := MultiDocumentPrompt(docs, "q", Unlimited)
	assert.Contains(t, full, strings.Repeat("r", 6000))
}

func TestBuildPrompt_Routing(t *testing.T) {
	c := testCorpus()

	p, n, err := BuildPrompt(c, []string{"Kickoff"}, "q")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, p, "na transcrição fornecida")

	p, n, err = BuildPrompt(c, []string{"Retro", "Kickoff"}, "q")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, p, "nas transcrições fornecidas")
	assert.Less(t, strings.Index(p, "'Retro'"), strings.Index(p, "'Kickoff'"))
	assert.NotContains(t, p, strings.Repeat("r", MultiDocumentLimit+1))

	p, n, err = BuildPrompt(c, nil, "q")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, p, strings.Repeat("r", 6000))

	_, _, err = BuildPrompt(c, []string{"Nope"}, "q")
	assert.True(t, eerrors.IsNotFound(err))

	_, _, err = BuildPrompt(corpus.New("empty"), nil, "q")
	assert.True(t, eerrors.IsNotFound(err))
}

func TestAsk_Success(t *testing.T) {
	m := &fakeModel{answer: "Ana abriu a reunião."}
	a := NewAnswerer(m, nil, nil)
	var h History

	turn, err := a.Ask(context.Background(), &h, "Quem abriu?", testCorpus(), []string{"Kickoff"})
	require.NoError(t, err)

	assert.Equal(t, Turn{Role: RoleAssistant, Content: "Ana abriu a reunião."}, turn)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "Quem abriu?"},
		{Role: RoleAssistant, Content: "Ana abriu a reunião."},
	}, h.Turns())
	assert.Contains(t, m.prompt, "Transcrição da reunião 'Kickoff'")
}

func TestAsk_ModelFailureBecomesAssistantTurn(t *testing.T) {
	m := &fakeModel{err: errors.New("quota exceeded")}
	a := NewAnswerer(m, nil, nil)
	var h History

	turn, err := a.Ask(context.Background(), &h, "Pergunta?", testCorpus(), nil)
	require.Error(t, err)

	assert.Equal(t, "Ocorreu um erro ao processar sua pergunta: quota exceeded", turn.Content)
	require.Equal(t, 2, h.Len())
	assert.Equal(t, RoleUser, h.Turns()[0].Role)
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, turn, last)
}

func TestAsk_ValidationAppendsNothing(t *testing.T) {
	m := &fakeModel{answer: "x"}
	a := NewAnswerer(m, nil, nil)
	var h History

	_, err := a.Ask(context.Background(), &h, "   ", testCorpus(), nil)
	assert.True(t, eerrors.IsValidation(err))

	_, err = a.Ask(context.Background(), &h, "q", corpus.New("empty"), nil)
	assert.True(t, eerrors.IsNotFound(err))

	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 0, m.calls)
}

func TestAsk_UnknownSelectionIsAnsweredInline(t *testing.T) {
	a := NewAnswerer(&fakeModel{answer: "x"}, nil, nil)
	var h History

	turn, err := a.Ask(context.Background(), &h, "q", testCorpus(), []string{"Nope"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(turn.Content, ErrorAnswerPrefix))
	assert.Equal(t, 2, h.Len())
}

func TestBuildPrompt_PartlyUnknownSelection(t *testing.T) {
	_, _, err := BuildPrompt(testCorpus(), []string{"Kickoff", "Fantasma"}, "q")
	require.Error(t, err)
	assert.True(t, eerrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "Fantasma")
	assert.NotContains(t, err.Error(), "Kickoff")
}

func TestAsk_PartlyUnknownSelectionSkipsModel(t *testing.T) {
	m := &fakeModel{answer: "x"}
	a := NewAnswerer(m, nil, nil)
	var h History

	turn, err := a.Ask(context.Background(), &h, "q", testCorpus(), []string{"Kickoff", "Fantasma"})
	require.Error(t, err)
	assert.Zero(t, m.calls)
	assert.True(t, strings.HasPrefix(turn.Content, ErrorAnswerPrefix))
	assert.Contains(t, turn.Content, "Fantasma")
	assert.Equal(t, 2, h.Len())
}

func TestHistory_AppendOnlyCopy(t *testing.T) {
	var h History
	_, ok := h.Last()
	assert.False(t, ok)

	h.Append(Turn{Role: RoleUser, Content: "a"})
	turns := h.Turns()
	turns[0].Content = "mutated"
	assert.Equal(t, "a", h.Turns()[0].Content)
}

func TestHistory_ConcurrentAppend(t *testing.T) {
	var h History
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(Turn{Role: RoleUser, Content: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, h.Len())
}
