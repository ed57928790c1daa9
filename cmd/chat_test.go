package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/entregaveis/pkg/chat"
	eerrors "github.com/otherjamesbrown/entregaveis/pkg/errors"
)

func createChatTestDeps(dir string, m *fakeModel, in string) *ChatCommandDeps {
	return &ChatCommandDeps{
		Config:     mockConfig(dir),
		ResolveKey: staticKey(),
		NewModel:   fakeFactory(m),
		In:         strings.NewReader(in),
	}
}

func TestNewChatCommand(t *testing.T) {
	cmd := NewChatCommand(nil)
	assert.Equal(t, "chat [question]", cmd.Use)
	assert.NotNil(t, cmd.Flags().Lookup("meeting"))
	assert.NotNil(t, cmd.Flags().Lookup("interactive"))
}

func TestChat_WholeCorpus(t *testing.T) {
	dir := writeFixtures(t)
	m := &fakeModel{answer: "Duas reuniões."}

	var out bytes.Buffer
	err := runChat(context.Background(), &out, &bytes.Buffer{}, createChatTestDeps(dir, m, ""), "", "Quantas reuniões?", nil, false)
	require.NoError(t, err)

	assert.Equal(t, "Duas reuniões.\n", out.String())
	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0], "Vamos começar o projeto.")
	assert.Contains(t, m.prompts[0], "O sprint foi bom.")
	assert.True(t, strings.HasSuffix(m.prompts[0], "Pergunta: Quantas reuniões?\n\nResposta:"))
}

func TestChat_SingleMeeting(t *testing.T) {
	dir := writeFixtures(t)
	m := &fakeModel{answer: "Ana."}

	err := runChat(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, createChatTestDeps(dir, m, ""), "", "Quem falou?", []string{"kickoff"}, false)
	require.NoError(t, err)
	require.Len(t, m.prompts, 1)
	assert.Contains(t, m.prompts[0], "kickoff")
	assert.NotContains(t, m.prompts[0], "O sprint foi bom.")
}

func TestChat_EmptyQuestion(t *testing.T) {
	m := &fakeModel{answer: "x"}
	err := runChat(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, createChatTestDeps(t.TempDir(), m, ""), "", "   ", nil, false)
	assert.True(t, eerrors.IsValidation(err))
	assert.Empty(t, m.prompts)
}

func TestChat_EmptyCorpus(t *testing.T) {
	m := &fakeModel{answer: "x"}
	err := runChat(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, createChatTestDeps(t.TempDir(), m, ""), "", "Oi?", nil, false)
	assert.True(t, eerrors.IsNotFound(err))
	assert.Empty(t, m.prompts)
}

func TestChat_ModelFailurePrintsErrorTurn(t *testing.T) {
	dir := writeFixtures(t)
	m := &fakeModel{err: errors.New("quota")}

	var out bytes.Buffer
	err := runChat(context.Background(), &out, &bytes.Buffer{}, createChatTestDeps(dir, m, ""), "", "Oi?", nil, false)
	assert.Error(t, err)
	assert.True(t, strings.HasPrefix(out.String(), chat.ErrorAnswerPrefix))
}

func TestChat_Interactive(t *testing.T) {
	dir := writeFixtures(t)
	m := &fakeModel{answer: "Resposta."}
	deps := createChatTestDeps(dir, m, "Primeira?\n\nSegunda?\nsair\nTerceira?\n")

	var out, errOut bytes.Buffer
	require.NoError(t, runChat(context.Background(), &out, &errOut, deps, "", "", nil, true))

	assert.Len(t, m.prompts, 2, "blank lines are skipped and sair stops the loop")
	assert.Equal(t, 2, strings.Count(out.String(), "Resposta."))
	assert.Contains(t, errOut.String(), "2 documentos carregados")
	assert.Contains(t, errOut.String(), "Por favor, digite uma pergunta.")
}
