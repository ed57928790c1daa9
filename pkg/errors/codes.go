package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to the text shown next to a failed action.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrTimeout: {
		Code:            ErrTimeout,
		Description:     "A chamada ao modelo excedeu o tempo limite",
		SuggestedAction: "Aumente o timeout: entregaveis config set timeout 3m",
	},
	ErrRateLimit: {
		Code:            ErrRateLimit,
		Description:     "Limite de uso da API atingido",
		SuggestedAction: "Aguarde alguns instantes e tente novamente, ou verifique a cota no Google AI Studio",
	},
	ErrModelUnavailable: {
		Code:            ErrModelUnavailable,
		Description:     "Serviço do modelo indisponível",
		SuggestedAction: "Verifique a conexão e o endereço configurado em api_base_url",
	},
	ErrContextCancelled: {
		Code:            ErrContextCancelled,
		Description:     "Operação cancelada",
		SuggestedAction: "Execute a ação novamente",
	},
	ErrUnauthorized: {
		Code:            ErrUnauthorized,
		Description:     "Chave da API recusada pelo serviço",
		SuggestedAction: "Cadastre uma chave válida: entregaveis auth login",
	},
	ErrParseError: {
		Code:            ErrParseError,
		Description:     "A resposta do modelo não é um JSON válido",
		SuggestedAction: "Confira a resposta recebida ou gere o relatório em modo texto (--mode text)",
	},
	ErrEmptyContent: {
		Code:            ErrEmptyContent,
		Description:     "O modelo não retornou conteúdo",
		SuggestedAction: "Tente novamente ou reduza o tamanho do texto de origem",
	},
	ErrProcessingError: {
		Code:            ErrProcessingError,
		Description:     "Erro não classificado ao processar a ação",
		SuggestedAction: "Execute com --debug para ver os detalhes",
	},
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Execute com --debug para ver os detalhes"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Erro desconhecido"
}
