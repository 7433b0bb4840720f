package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danilodaat/automat/internal/core/domain"
)

func entities(kv ...string) domain.Entities {
	e := domain.NewEntities()
	for i := 0; i+1 < len(kv); i += 2 {
		e.Set(kv[i], []string{kv[i+1]})
	}
	return e
}

func TestSectorClientMatchesTopic(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "Sector Gobierno", Keywords: []string{"Economía", "Política"}, Sector: true},
	}}

	got := Matcher{}.Match("texto sin relación", domain.NewEntities(), []string{"política", "Minería"}, dir)

	assert.Equal(t, []domain.KeywordMatch{
		{Client: "Sector Gobierno", Term: "Política", Kind: domain.MatchTopicSector},
	}, got)
}

func TestSectorClientIgnoresTranscriptWords(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "Sector Minero", Keywords: []string{"minería"}, Sector: true},
	}}

	got := Matcher{}.Match("La minería creció", domain.NewEntities(), []string{"Otro"}, dir)
	assert.Empty(t, got)
}

func TestExactKeywordMatchesWholeWords(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "Banco", Keywords: []string{"BCP", "crédito"}},
		{Client: "Aerolínea", Keywords: []string{"avión"}},
		{Client: "Minera", Keywords: []string{"cobre"}},
	}}

	got := Matcher{}.Match("El BCP amplió el crédito; los aviones despegaron", domain.NewEntities(), nil, dir)

	// "avión" is not a whole word of "aviones"; the bank stops at its first hit.
	assert.Equal(t, []domain.KeywordMatch{
		{Client: "Banco", Term: "BCP", Kind: domain.MatchExactKeyword},
	}, got)
}

func TestExactKeywordMatchesEntitySubstring(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "Telefónica", Keywords: []string{"movistar"}},
	}}

	got := Matcher{}.Match("sin menciones", entities("Organizaciones", "Movistar Perú"), nil, dir)

	assert.Equal(t, []domain.KeywordMatch{
		{Client: "Telefónica", Term: "movistar", Kind: domain.MatchExactKeyword},
	}, got)
}

func TestMultiWordKeyword(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "BCR", Keywords: []string{"banco central"}},
		{Client: "Otro banco", Keywords: []string{"central banco"}},
	}}

	got := Matcher{}.Match("El Banco Central de Reserva subió la tasa", domain.NewEntities(), nil, dir)

	assert.Equal(t, []domain.KeywordMatch{
		{Client: "BCR", Term: "banco central", Kind: domain.MatchExactKeyword},
	}, got)
}

func TestExhaustiveMatcherRecordsEveryKeyword(t *testing.T) {
	dir := domain.KeywordDirectory{Clients: []domain.ClientKeywords{
		{Client: "Banco", Keywords: []string{"bcp", "crédito", "BCP", "hipoteca"}},
	}}

	got := Matcher{Exhaustive: true}.Match("el bcp y el crédito", domain.NewEntities(), nil, dir)

	assert.Equal(t, []domain.KeywordMatch{
		{Client: "Banco", Term: "bcp", Kind: domain.MatchExactKeyword},
		{Client: "Banco", Term: "crédito", Kind: domain.MatchExactKeyword},
	}, got)
}

func TestEmptyDirectory(t *testing.T) {
	assert.Empty(t, Matcher{}.Match("texto", domain.NewEntities(), nil, domain.KeywordDirectory{}))
}

func TestIsSectorClient(t *testing.T) {
	assert.True(t, IsSectorClient("SECTOR Salud"))
	assert.True(t, IsSectorClient("Intersectorial"))
	assert.False(t, IsSectorClient("Clínica"))
}
