// Package catalog holds the static NR course catalog. The catalog is fixed at
// build time; adding or removing a course is a deployment, not a runtime event.
package catalog

import "github.com/brunovinte3/controlsst/internal/models"

func years(n int) *int { return &n }

// Courses is the full regulated-course catalog in display order. A nil
// validity means the training never expires once completed.
var Courses = []models.Course{
	{ID: "NR05", Name: "NR 05 - CIPA", ValidityYears: years(1), Workload: "20h",
		Description: "Comissão Interna de Prevenção de Acidentes. Foca na prevenção de acidentes e doenças decorrentes do trabalho."},
	{ID: "NR06", Name: "NR 06 - EPI", ValidityYears: nil, Workload: "4h",
		Description: "Equipamento de Proteção Individual. Orientações sobre o uso, guarda e conservação de EPIs."},
	{ID: "NR10", Name: "NR 10 - Elétrica", ValidityYears: years(2), Workload: "40h",
		Description: "Segurança em Instalações e Serviços em Eletricidade. Requisitos mínimos para segurança de trabalhadores."},
	{ID: "NR11", Name: "NR 11 - Transportes", ValidityYears: years(1), Workload: "16h",
		Description: "Transporte, Movimentação, Armazenagem e Manuseio de Materiais. Focado em máquinas como empilhadeiras."},
	{ID: "NR12", Name: "NR 12 - Máquinas", ValidityYears: years(2), Workload: "16h",
		Description: "Segurança no Trabalho em Máquinas e Equipamentos. Referências técnicas e medidas de proteção."},
	{ID: "NR13VP", Name: "NR 13 - Vasos de Pressão", ValidityYears: years(1), Workload: "40h",
		Description: "Estabelece requisitos para a integridade estrutural de vasos de pressão e suas inspeções."},
	{ID: "NR13CL", Name: "NR 13 - Caldeiras", ValidityYears: years(1), Workload: "40h",
		Description: "Normas de segurança para operação e manutenção de caldeiras a vapor."},
	{ID: "NR20", Name: "NR 20 - Inflamáveis", ValidityYears: years(1), Workload: "8h a 32h",
		Description: "Segurança e Saúde no Trabalho com Inflamáveis e Combustíveis."},
	{ID: "NR23", Name: "NR 23 - Incêndio", ValidityYears: years(1), Workload: "8h",
		Description: "Proteção Contra Incêndios. Medidas de prevenção e procedimentos de emergência."},
	{ID: "NR26", Name: "NR 26 - Sinalização", ValidityYears: nil, Workload: "4h",
		Description: "Sinalização de Segurança. Estabelece padrões de cores e avisos para identificar perigos no ambiente laboral."},
	{ID: "NR31", Name: "NR 31 - Agrícola e Florestal", ValidityYears: years(2), Workload: "24h",
		Description: "Segurança e Saúde no Trabalho na Agricultura, Pecuária, Silvicultura, Exploração Florestal e Aquicultura."},
	{ID: "NR315", Name: "NR31.5 Comissão Interna de Prevenção de Acidentes do Trabalho Rural - CIPATR", ValidityYears: years(2), Workload: "20h",
		Description: "Focado na prevenção de acidentes e doenças no trabalho rural."},
	{ID: "NR317", Name: "NR31.7 Agrotóxicos, Aditivos, Adjuvantes e Produtos Afins", ValidityYears: years(2), Workload: "16h",
		Description: "Segurança e saúde no manuseio de agrotóxicos no trabalho rural."},
	{ID: "NR3112", Name: "NR31.12 Segurança no Trabalho em Máquinas, Equipamentos e Implementos", ValidityYears: years(1), Workload: "24h",
		Description: "Segurança na operação de máquinas e implementos agrícolas conforme NR-31."},
	{ID: "NR32", Name: "NR 32 - Serviços de Saúde", ValidityYears: years(2), Workload: "32h",
		Description: "Segurança e Saúde no Trabalho em Serviços de Saúde. Foca em riscos biológicos, químicos e radiológicos."},
	{ID: "NR33", Name: "NR 33 - Espaço Confinado", ValidityYears: years(1), Workload: "16h",
		Description: "Segurança e Saúde nos Trabalhos em Espaços Confinados. Gestão de riscos e entrada."},
	{ID: "NR34", Name: "NR 34 - Naval (T. Quente)", ValidityYears: years(1), Workload: "12h",
		Description: "Condições e Meio Ambiente de Trabalho na Indústria da Construção e Reparação Naval (Foco em Trabalho a Quente)."},
	{ID: "NR35", Name: "NR 35 - Altura", ValidityYears: years(2), Workload: "8h",
		Description: "Trabalho em Altura. Requisitos para planejamento, organização e execução de serviços em altura."},
}

var byID = func() map[string]models.Course {
	m := make(map[string]models.Course, len(Courses))
	for _, c := range Courses {
		m[c.ID] = c
	}
	return m
}()

// Find returns the course with the given id.
func Find(id string) (models.Course, bool) {
	c, ok := byID[id]
	return c, ok
}

// IDs returns every course id in catalog order.
func IDs() []string {
	ids := make([]string, len(Courses))
	for i, c := range Courses {
		ids[i] = c.ID
	}
	return ids
}
