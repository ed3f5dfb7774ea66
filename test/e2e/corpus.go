// Package e2e runs the full evaluation pipeline against a synthetic gold
// dataset: write corpus and gold files to disk, build a real Bleve index,
// retrieve, read, score, and check the report.
package e2e

import (
	"fmt"

	"github.com/hyperjump/kotae/internal/models"
)

// Article is one synthetic encyclopedia entry with a planted answer. The
// lead sentence restates every content word of the question, the answer run
// follows it directly, and the tail opens with a function word so the answer
// ends where the gold span says it does. Each entry also carries at least
// one invented word (crocidolite, tarnbeck, quorrin, ...) that appears in no
// other entry, which pins both retrieval and extraction to this document.
// TestArticles_AnswersExtractable verifies all of that by running the real
// reader over every entry.
type Article struct {
	Title    string
	Question string
	Lead     []string
	Answer   []string
	Tail     []string
}

// Want records where the pipeline should land for one question: the document
// it must answer from and the exact spans the reader should produce.
type Want struct {
	DocumentID string
	Long       models.TokenSpan
	Short      models.TokenSpan
}

// GoldCorpus is the article table rendered into evaluator inputs.
type GoldCorpus struct {
	Articles    []Article
	Documents   []*models.Document
	Questions   []models.Question
	Annotations map[string][]models.Annotation
	// Wanted maps question IDs to their planted spans. Questions absent from
	// the map are gold no-answer.
	Wanted map[string]Want
}

// annotatorsPerQuestion mirrors multi-annotator gold data; all annotators
// agree here so the expected metrics stay exact.
const annotatorsPerQuestion = 3

// BuildGoldCorpus assembles the fixture dataset: one document and one
// answerable question per article, plus two questions whose annotators all
// marked no-answer and whose words appear nowhere in the corpus.
func BuildGoldCorpus() *GoldCorpus {
	g := &GoldCorpus{
		Articles:    buildArticles(),
		Annotations: make(map[string][]models.Annotation),
		Wanted:      make(map[string]Want),
	}

	for i, a := range g.Articles {
		docID := fmt.Sprintf("e2e-doc-%03d", i+1)
		qid := fmt.Sprintf("e2e-q-%03d", i+1)

		tokens := make([]string, 0, len(a.Lead)+len(a.Answer)+len(a.Tail))
		tokens = append(tokens, a.Lead...)
		short := models.TokenSpan{DocumentID: docID, StartToken: len(tokens)}
		tokens = append(tokens, a.Answer...)
		short.EndToken = len(tokens)
		tokens = append(tokens, a.Tail...)
		long := models.TokenSpan{DocumentID: docID, StartToken: 0, EndToken: len(tokens)}

		g.Documents = append(g.Documents, &models.Document{
			ID:       docID,
			Title:    a.Title,
			Revision: 1,
			Tokens:   tokens,
		})
		g.Questions = append(g.Questions, models.Question{ID: qid, Text: a.Question})

		ann := models.Annotation{
			QuestionID:   qid,
			LongAnswer:   &long,
			ShortAnswers: []models.TokenSpan{short},
		}
		anns := make([]models.Annotation, annotatorsPerQuestion)
		for j := range anns {
			anns[j] = ann
		}
		g.Annotations[qid] = anns
		g.Wanted[qid] = Want{DocumentID: docID, Long: long, Short: short}
	}

	for j, text := range noAnswerQuestions() {
		qid := fmt.Sprintf("e2e-q-%03d", len(g.Articles)+j+1)
		g.Questions = append(g.Questions, models.Question{ID: qid, Text: text})
		anns := make([]models.Annotation, annotatorsPerQuestion)
		for k := range anns {
			anns[k] = models.Annotation{QuestionID: qid, NoAnswer: true}
		}
		g.Annotations[qid] = anns
	}

	return g
}

// AnswerableCount returns the number of questions with a gold answer.
func (g *GoldCorpus) AnswerableCount() int {
	return len(g.Articles)
}

// NoAnswerCount returns the number of gold no-answer questions.
func (g *GoldCorpus) NoAnswerCount() int {
	return len(g.Questions) - len(g.Articles)
}

// buildArticles returns the article table. Authoring rules, verified by the
// fixture tests: between the first question word in the lead and the answer
// run there are only question words and function words; answer tokens are
// content words absent from the question; the tail opens with a function
// word; every entry stays short enough for one reader window.
func buildArticles() []Article {
	return []Article{
		{
			Title:    "Crocidolite",
			Question: "what color is the mineral crocidolite",
			Lead:     []string{"The", "mineral", "crocidolite", "has", "a", "color", "of"},
			Answer:   []string{"deep", "blue"},
			Tail:     []string{"in", "most", "natural", "samples", ".", "<P>", "Weathered", "veins", "show", "paler", "tints", "."},
		},
		{
			Title:    "Tilted Pagoda of Verlund",
			Question: "who designed the tilted pagoda of verlund",
			Lead:     []string{"The", "tilted", "pagoda", "of", "verlund", "was", "designed", "by"},
			Answer:   []string{"Master", "Huinan"},
			Tail:     []string{"in", "the", "ming", "era", "."},
		},
		{
			Title:    "Kingdom of Lurvania",
			Question: "when did the kingdom of lurvania collapse",
			Lead:     []string{"The", "kingdom", "of", "lurvania", "did", "collapse", "in"},
			Answer:   []string{"1347"},
			Tail:     []string{"at", "the", "end", "of", "a", "decade", "of", "famine", "."},
		},
		{
			Title:    "Vexane",
			Question: "what is the boiling temperature of liquid vexane",
			Lead:     []string{"The", "boiling", "temperature", "of", "liquid", "vexane", "is"},
			Answer:   []string{"minus", "forty", "degrees"},
			Tail:     []string{"at", "standard", "pressure", "."},
		},
		{
			Title:    "Hollow Ridge Observatory",
			Question: "who founded the observatory at hollow ridge",
			Lead:     []string{"The", "observatory", "at", "hollow", "ridge", "was", "founded", "by"},
			Answer:   []string{"Edwin", "Maardens"},
			Tail:     []string{"in", "the", "late", "autumn", "of", "1901", "."},
		},
		{
			Title:    "Tarnbeck",
			Question: "what river flows past the city of tarnbeck",
			Lead:     []string{"The", "river", "that", "flows", "past", "the", "city", "of", "tarnbeck", "is", "the"},
			Answer:   []string{"Silvergrain"},
			Tail:     []string{"which", "drains", "the", "northern", "fells", "."},
		},
		{
			Title:    "Ydrasseth",
			Question: "what number of moons orbit the planet ydrasseth",
			Lead:     []string{"The", "number", "of", "moons", "that", "orbit", "the", "planet", "ydrasseth", "is"},
			Answer:   []string{"eleven"},
			Tail:     []string{"by", "the", "latest", "survey", "count", "."},
		},
		{
			Title:    "Nellavin",
			Question: "where was the composer nellavin born",
			Lead:     []string{"The", "composer", "nellavin", "was", "born", "at"},
			Answer:   []string{"Drosselgate"},
			Tail:     []string{"on", "the", "winter", "solstice", "."},
		},
		{
			Title:    "Kovarra Pits",
			Question: "what metal is mined at the kovarra pits",
			Lead:     []string{"The", "metal", "mined", "at", "the", "kovarra", "pits", "is"},
			Answer:   []string{"raw", "cobalt"},
			Tail:     []string{"for", "use", "in", "early", "glasswork", "."},
		},
		{
			Title:    "Treaty of Brindlemoor",
			Question: "when was the treaty of brindlemoor signed",
			Lead:     []string{"The", "treaty", "of", "brindlemoor", "was", "signed", "in"},
			Answer:   []string{"1622"},
			Tail:     []string{"by", "envoys", "from", "both", "coasts", "."},
		},
		{
			Title:    "Skarvholm",
			Question: "what bird nests on the cliffs of skarvholm",
			Lead:     []string{"The", "bird", "that", "nests", "on", "the", "cliffs", "of", "skarvholm", "is", "the"},
			Answer:   []string{"stormfeather", "petrel"},
			Tail:     []string{"which", "arrives", "with", "the", "spring", "thaw", ".", "<P>", "Eggs", "hatch", "near", "midsummer", "."},
		},
		{
			Title:    "Chronicle of the Glass Harbor",
			Question: "who was the author of the chronicle of the glass harbor",
			Lead:     []string{"The", "author", "of", "the", "chronicle", "of", "the", "glass", "harbor", "was"},
			Answer:   []string{"Abbess", "Ferrawyn"},
			Tail:     []string{"who", "kept", "the", "port", "ledgers", "."},
		},
		{
			Title:    "Cape Vundel Light",
			Question: "what fuel powers the lighthouse at cape vundel",
			Lead:     []string{"The", "fuel", "that", "powers", "the", "lighthouse", "at", "cape", "vundel", "is"},
			Answer:   []string{"pressed", "whale", "tallow"},
			Tail:     []string{"and", "has", "been", "for", "a", "century", "."},
		},
		{
			Title:    "Melviel Terraces",
			Question: "what grain is grown in the terraces of melviel",
			Lead:     []string{"The", "grain", "grown", "in", "the", "terraces", "of", "melviel", "is"},
			Answer:   []string{"winter", "spelt"},
			Tail:     []string{"on", "plots", "cut", "from", "the", "hillside", "."},
		},
		{
			Title:    "Parvis Circuit",
			Question: "who holds the speed record at the parvis circuit",
			Lead:     []string{"The", "driver", "who", "holds", "the", "speed", "record", "at", "the", "parvis", "circuit", "is"},
			Answer:   []string{"Imma", "Corvelle"},
			Tail:     []string{"with", "a", "lap", "from", "1978", "."},
		},
		{
			Title:    "Varnholt Cloth",
			Question: "what dye gives varnholt cloth its crimson shade",
			Lead:     []string{"The", "dye", "that", "gives", "varnholt", "cloth", "its", "crimson", "shade", "is"},
			Answer:   []string{"crushed", "madder", "root"},
			Tail:     []string{"from", "the", "dyers", "guild", "plots", "."},
		},
		{
			Title:    "Droskau Sounding Well",
			Question: "what is the depth of the sounding well at droskau",
			Lead:     []string{"The", "depth", "of", "the", "sounding", "well", "at", "droskau", "is"},
			Answer:   []string{"ninety", "fathoms"},
			Tail:     []string{"by", "the", "keepers", "own", "measure", "."},
		},
		{
			Title:    "Fort Esterling Bell",
			Question: "what ship carried the bell to fort esterling",
			Lead:     []string{"The", "ship", "that", "carried", "the", "bell", "to", "fort", "esterling", "was", "the"},
			Answer:   []string{"brig", "Halcyone"},
			Tail:     []string{"in", "the", "summer", "of", "1804", "."},
		},
		{
			Title:    "Quorrin Festival Bread",
			Question: "what spice flavors the festival bread of quorrin",
			Lead:     []string{"The", "spice", "that", "flavors", "the", "festival", "bread", "of", "quorrin", "is"},
			Answer:   []string{"green", "cardamom"},
			Tail:     []string{"by", "custom", "centuries", "old", "."},
		},
		{
			Title:    "Withren Abbey",
			Question: "who carved the gate figures of the withren abbey",
			Lead:     []string{"The", "gate", "figures", "of", "the", "withren", "abbey", "were", "carved", "by"},
			Answer:   []string{"Brother", "Anselm", "Dur"},
			Tail:     []string{"in", "the", "last", "years", "of", "his", "life", "."},
		},
	}
}

// noAnswerQuestions returns questions whose every word is absent from the
// corpus, so retrieval provably returns nothing and the pipeline must report
// them as no-answer.
func noAnswerQuestions() []string {
	return []string{
		"what is the airspeed of a laden quibbersnatch",
		"when does the violet comet of parhollow return",
	}
}
