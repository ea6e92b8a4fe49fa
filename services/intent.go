package services

import (
	"strings"

	"github.com/leocezardev/pifc/models"
)

// Intent is the coarse category a user message is classified into. The same
// classification drives both the canned fallback reply (when the reasoning
// service is unavailable) and the decorative processing trace shown alongside
// every assistant reply, so the two can never drift apart.
type Intent int

const (
	IntentGeneral Intent = iota
	IntentFunctionPoints
	IntentRequirements
)

// ClassifyIntent is a pure keyword classifier over the user's message.
func ClassifyIntent(message string) Intent {
	lower := strings.ToLower(message)

	for _, kw := range []string{"ponto", "função", "funcao", "apf"} {
		if strings.Contains(lower, kw) {
			return IntentFunctionPoints
		}
	}
	for _, kw := range []string{"requisito", "validar"} {
		if strings.Contains(lower, kw) {
			return IntentRequirements
		}
	}
	return IntentGeneral
}

type cannedReply struct {
	narrative string
	steps     models.ProcessingSteps
}

var cannedReplies = map[Intent]cannedReply{
	IntentFunctionPoints: {
		narrative: "Entendido. Para a contagem de pontos de função (APF), vou analisar as funcionalidades descritas nos documentos do contrato seguindo as diretrizes do SISP e do IFPUG. " +
			"Considero entradas externas, saídas externas, consultas externas e arquivos lógicos internos e externos. " +
			"Envie os documentos do contrato e os requisitos para que eu possa comparar o escopo contratado com o escopo entregue.",
		steps: models.ProcessingSteps{
			{Label: "Identificando funcionalidades", Detail: "Mapeamento de entradas, saídas e consultas", Status: models.StepStatusDone, Elapsed: "1.2s"},
			{Label: "Aplicando diretrizes SISP", Detail: "Contagem conforme roteiro de métricas", Status: models.StepStatusDone, Elapsed: "0.8s"},
			{Label: "Consolidando contagem", Detail: "Totais de pontos contratados e entregues", Status: models.StepStatusDone, Elapsed: "0.5s"},
		},
	},
	IntentRequirements: {
		narrative: "Certo. Para validar os requisitos, comparo cada requisito funcional especificado com as evidências de entrega disponíveis (código, telas e documentação). " +
			"Requisitos sem evidência correspondente são marcados como não entregues; entregas sem requisito são apontadas como escopo excedente. " +
			"Posso detalhar qualquer item da validação a pedido.",
		steps: models.ProcessingSteps{
			{Label: "Lendo requisitos", Detail: "Extração dos requisitos funcionais", Status: models.StepStatusDone, Elapsed: "1.0s"},
			{Label: "Cruzando com entregas", Detail: "Busca de evidências por requisito", Status: models.StepStatusDone, Elapsed: "1.4s"},
			{Label: "Classificando divergências", Detail: "Itens faltantes e excedentes", Status: models.StepStatusDone, Elapsed: "0.6s"},
		},
	},
	IntentGeneral: {
		narrative: "Sou o agente de fiscalização de contratos de TI. Posso ajudar com:\n\n" +
			"- Contagem de pontos de função (APF/SISP) do escopo contratado e entregue\n" +
			"- Validação de requisitos contra as evidências de entrega\n" +
			"- Geração de score de conformidade (0 a 100) com relatório detalhado\n\n" +
			"Envie os documentos ou descreva o contrato para começarmos.",
		steps: models.ProcessingSteps{
			{Label: "Interpretando solicitação", Detail: "Análise da mensagem recebida", Status: models.StepStatusDone, Elapsed: "0.4s"},
			{Label: "Selecionando capacidades", Detail: "APF, requisitos e score disponíveis", Status: models.StepStatusDone, Elapsed: "0.3s"},
			{Label: "Preparando resposta", Detail: "Resumo das opções de fiscalização", Status: models.StepStatusDone, Elapsed: "0.2s"},
		},
	},
}

// FallbackReply returns the deterministic canned narrative for a user
// message, used when the reasoning service fails or is unconfigured.
func FallbackReply(message string) string {
	return cannedReplies[ClassifyIntent(message)].narrative
}

// StepsFor returns the decorative processing trace for a user message. The
// trace is keyword-selected, independent of which path generated the actual
// reply content.
func StepsFor(message string) models.ProcessingSteps {
	steps := cannedReplies[ClassifyIntent(message)].steps
	out := make(models.ProcessingSteps, len(steps))
	copy(out, steps)
	return out
}

// RepoConnectedReply is the synthetic assistant message appended when a
// session of type repo is created with a repository URL. No reasoning call
// is made on this path.
func RepoConnectedReply(repoURL string) (string, models.ProcessingSteps) {
	narrative := "Repositório conectado: " + repoURL + "\n\n" +
		"Estrutura do projeto mapeada e varredura preliminar concluída. " +
		"Posso agora comparar o código entregue com o escopo contratado. " +
		"Envie uma mensagem descrevendo o contrato ou peça a geração do score."
	steps := models.ProcessingSteps{
		{Label: "Conectando ao repositório", Detail: repoURL, Status: models.StepStatusDone, Elapsed: "0.9s"},
		{Label: "Mapeando estrutura", Detail: "Diretórios e módulos identificados", Status: models.StepStatusDone, Elapsed: "1.6s"},
		{Label: "Varredura preliminar", Detail: "Funcionalidades candidatas detectadas", Status: models.StepStatusDone, Elapsed: "2.1s"},
	}
	return narrative, steps
}

// UploadReceivedReply is the synthetic assistant message appended when a
// session of type upload is created. No reasoning call is made on this path.
func UploadReceivedReply() (string, models.ProcessingSteps) {
	narrative := "Documentos recebidos.\n\n" +
		"O texto foi extraído e indexado para análise. " +
		"Posso validar requisitos, contar pontos de função ou gerar o score de conformidade a partir dos documentos enviados."
	steps := models.ProcessingSteps{
		{Label: "Recebendo documentos", Detail: "Arquivos carregados com sucesso", Status: models.StepStatusDone, Elapsed: "0.5s"},
		{Label: "Extraindo texto", Detail: "Conteúdo textual recuperado", Status: models.StepStatusDone, Elapsed: "1.1s"},
		{Label: "Indexando conteúdo", Detail: "Documentos prontos para análise", Status: models.StepStatusDone, Elapsed: "0.7s"},
	}
	return narrative, steps
}

// ScoringSteps is the fixed five-step trace attached to the assistant message
// produced by score generation, regardless of which path built the report.
func ScoringSteps() models.ProcessingSteps {
	return models.ProcessingSteps{
		{Label: "Compilando contexto", Detail: "Transcrição completa da sessão", Status: models.StepStatusDone, Elapsed: "0.8s"},
		{Label: "Contando pontos de função", Detail: "Escopo contratado vs. entregue", Status: models.StepStatusDone, Elapsed: "2.3s"},
		{Label: "Cruzando requisitos", Detail: "Verificação de cobertura", Status: models.StepStatusDone, Elapsed: "1.7s"},
		{Label: "Calculando score", Detail: "Índice de conformidade 0-100", Status: models.StepStatusDone, Elapsed: "0.6s"},
		{Label: "Gerando relatório", Detail: "Consolidação do parecer", Status: models.StepStatusDone, Elapsed: "1.0s"},
	}
}

// FallbackScoreReport is the fixed report used when score generation cannot
// reach the reasoning service. It is a documented literal default, not
// derived from the transcript, and still completes the session.
func FallbackScoreReport() *models.ScoreReport {
	return &models.ScoreReport{
		Score:                 78,
		TotalContractedPoints: 450,
		TotalDeliveredPoints:  351,
		Summary: "Análise de conformidade concluída com base na sessão de fiscalização. " +
			"O fornecedor entregou a maior parte do escopo contratado, com divergências pontuais " +
			"que recomendamos tratar via termo aditivo ou glosa proporcional.",
		Discrepancies: []string{
			"Módulo de relatórios gerenciais entregue parcialmente",
			"Integração com o sistema legado não evidenciada",
		},
		Recommendations: []string{
			"Solicitar ao fornecedor evidências da integração com o sistema legado",
			"Aplicar glosa proporcional aos pontos de função não entregues",
			"Reavaliar o cronograma das entregas pendentes",
		},
		DetailedAnalysis: []models.FeatureAnalysis{
			{Feature: "Cadastro e manutenção de registros", Points: 120, Status: models.FeatureConforme, Observation: "Entregue conforme especificado"},
			{Feature: "Relatórios gerenciais", Points: 90, Status: models.FeatureParcial, Observation: "Filtros avançados ausentes"},
			{Feature: "Integração com sistema legado", Points: 60, Status: models.FeatureNaoEntregue, Observation: "Sem evidência de entrega"},
			{Feature: "Controle de acesso e perfis", Points: 80, Status: models.FeatureConforme, Observation: "Perfis implementados"},
			{Feature: "Consultas e painéis", Points: 100, Status: models.FeatureConforme, Observation: "Painéis operacionais"},
		},
		RiskLevel: models.RiskMedium,
	}
}
