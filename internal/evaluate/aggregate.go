package evaluate

import (
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// Aggregate reduces score records to per-task metrics. A pure reduction over
// counts: any permutation of records produces identical output.
//
// Correct counts require a predicted span. Gold-no-answer agreement is
// recorded per question but adds to neither numerator nor denominator, so
// true negatives never inflate precision or recall.
func Aggregate(records []models.ScoreRecord) (long, short models.TaskMetrics) {
	for _, rec := range records {
		if rec.PredictedLong {
			long.Predicted++
			if rec.LongCorrect {
				long.Correct++
			}
		}
		if rec.GoldHasLong {
			long.Gold++
		}
		if rec.PredictedShort {
			short.Predicted++
			if rec.ShortCorrect {
				short.Correct++
			}
		}
		if rec.GoldHasShort {
			short.Gold++
		}
	}
	finalize(&long)
	finalize(&short)
	return long, short
}

// finalize derives precision, recall, and F1 from the raw counts. Zero
// denominators yield 0, never NaN: an empty run reports zeros.
func finalize(m *models.TaskMetrics) {
	m.Precision = utils.SafeDiv(float64(m.Correct), float64(m.Predicted))
	m.Recall = utils.SafeDiv(float64(m.Correct), float64(m.Gold))
	m.F1 = utils.F1(m.Precision, m.Recall)
}
