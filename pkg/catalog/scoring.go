package catalog

import (
	"regexp"
	"strings"
)

// Доменные таблицы скоринга. Величины — policy constants, подобранные
// по реальному справочнику iRacing: важен относительный порядок,
// а не конкретные числа.

// legacyCarPatterns — признаки устаревших машин, исключаемых
// из поиска по умолчанию.
var legacyCarPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b991\b`), // Porsche предыдущего поколения
	regexp.MustCompile(`\b(2008|2009|2010|2011|2012|2013|2014|2015|2016)\b`),
	regexp.MustCompile(`\bcot\b|car of tomorrow`),
	regexp.MustCompile(`\b(legacy|retired|discontinued)\b`),
	regexp.MustCompile(`\bgen ?1\b|\bmk ?1\b`),
	regexp.MustCompile(`c6\.?r`), // Corvette C6.R против новых C8.R
	regexp.MustCompile(`\bc7\b`),
	regexp.MustCompile(`formula renault`),
	regexp.MustCompile(`\bir-?05\b`), // Старый IndyCar
}

// IsLegacyCar проверяет, относится ли машина к устаревшему поколению.
func IsLegacyCar(name string) bool {
	nameLower := strings.ToLower(name)
	for _, p := range legacyCarPatterns {
		if p.MatchString(nameLower) {
			return true
		}
	}
	return false
}

// legacyQueryKeywords — слова в запросе, по которым понятно,
// что пользователь явно ищет устаревшую машину.
var legacyQueryKeywords = []string{
	"legacy", "old", "classic", "vintage", "991", "gen 1", "generation 1",
}

// queryWantsLegacy — запрос явно про устаревшие машины.
func queryWantsLegacy(normQuery string) bool {
	for _, kw := range legacyQueryKeywords {
		if strings.Contains(normQuery, kw) {
			return true
		}
	}
	return false
}

type scoredPattern struct {
	re    *regexp.Regexp
	score int
}

// yearPatterns — чем свежее год в названии, тем выше скор.
var yearPatterns = []scoredPattern{
	{regexp.MustCompile(`\b(2024|2025)\b`), 90},
	{regexp.MustCompile(`\b(2022|2023)\b`), 80},
	{regexp.MustCompile(`\b(2020|2021)\b`), 70},
	{regexp.MustCompile(`\b(2018|2019)\b`), 50},
	{regexp.MustCompile(`\b2017\b`), 30},
}

// modernPatterns — маркеры современных машин. Берется максимум.
var modernPatterns = []scoredPattern{
	{regexp.MustCompile(`\bnext ?gen\b`), 90},
	{regexp.MustCompile(`\bgen ?3\b`), 85},
	{regexp.MustCompile(`\bgtp\b`), 85}, // Современный класс GTP
	{regexp.MustCompile(`\bevo ?ii\b`), 80},
	{regexp.MustCompile(`\bhybrid\b`), 80},
	{regexp.MustCompile(`\bgt3 ?r\b`), 75},
	{regexp.MustCompile(`\bevo\b`), 70},
	{regexp.MustCompile(`\bgte\b`), 70},
	{regexp.MustCompile(`\bgt3\b`), 65},
	{regexp.MustCompile(`\btcr\b`), 65},
	{regexp.MustCompile(`\bgt4\b`), 60},
}

// CarGenerationScore оценивает "свежесть" машины: 0..100, больше = новее.
//
// Используется как additive бонус при равной текстовой близости:
// когда несколько поколений одного семейства матчатся одинаково,
// первым сортируется самое новое.
func CarGenerationScore(name string) int {
	nameLower := strings.ToLower(name)

	if IsLegacyCar(name) {
		return 0
	}

	// Поколения Porsche: 992 > 991
	if strings.Contains(nameLower, "porsche") {
		if strings.Contains(nameLower, "992") {
			return 100
		}
		if strings.Contains(nameLower, "991") {
			return 10
		}
	}

	for _, p := range yearPatterns {
		if p.re.MatchString(nameLower) {
			return p.score
		}
	}

	score := 40 // База для современной машины без явных маркеров
	for _, p := range modernPatterns {
		if p.re.MatchString(nameLower) && p.score > score {
			score = p.score
		}
	}
	return score
}

// preferredVariants — гоночные конфигурации трасс, по убыванию приоритета.
var preferredVariants = []scoredPattern{
	{regexp.MustCompile(`\bgrand ?prix\b`), 100},
	{regexp.MustCompile(`\bfull ?course\b`), 95},
	{regexp.MustCompile(`\binternational\b`), 90},
	{regexp.MustCompile(`\bendurance\b`), 85},
	{regexp.MustCompile(`\boval\b`), 80},
	{regexp.MustCompile(`\bnational\b`), 75},
	{regexp.MustCompile(`\bclub\b`), 70},
}

// lessPreferredVariants — конфигурации, которые выбираются
// только по явному запросу.
var lessPreferredVariants = []scoredPattern{
	{regexp.MustCompile(`\bshort\b`), 45},
	{regexp.MustCompile(`\bmoto\b`), 40},
	{regexp.MustCompile(`\balt\b`), 40},
	{regexp.MustCompile(`\bbike\b`), 35},
	{regexp.MustCompile(`\brallycross\b`), 30},
	{regexp.MustCompile(`\blegends\b`), 25},
	{regexp.MustCompile(`\bschool\b`), 20},
	{regexp.MustCompile(`\breverse\b`), 15},
}

// TrackVariantScore оценивает вариант конфигурации: 0..100, больше = предпочтительнее.
// Пустой вариант (базовая трасса) получает средний скор.
func TrackVariantScore(variant string) int {
	if variant == "" {
		return 50
	}

	variantLower := strings.ToLower(variant)

	for _, p := range preferredVariants {
		if p.re.MatchString(variantLower) {
			return p.score
		}
	}
	for _, p := range lessPreferredVariants {
		if p.re.MatchString(variantLower) {
			return p.score
		}
	}
	return 50
}

// variantKeywords — все ключевые слова вариантов для детекции
// явного указания конфигурации в запросе.
var variantKeywords = []string{
	"grand prix", "full course", "international", "endurance", "oval",
	"national", "club", "short", "moto", "bike", "rallycross",
	"legends", "school", "reverse",
}

// queryVariantKeyword возвращает ключевое слово варианта из запроса
// ("x national" → "national") или пустую строку.
//
// Сравнение по целым словам: "international" в запросе не должен
// срабатывать как "national".
func queryVariantKeyword(normQuery string) string {
	words := " " + normQuery + " "
	for _, kw := range variantKeywords {
		if strings.Contains(words, " "+kw+" ") {
			return kw
		}
	}
	return ""
}
