package session

import (
	"math"
	"time"
)

// Rating is the overall band of a finished session.
type Rating int

const (
	RatingReview Rating = iota
	RatingGood
	RatingExcellent
)

// RatePercentage maps a percentage to its band.
func RatePercentage(pct float64) Rating {
	switch {
	case pct >= 80:
		return RatingExcellent
	case pct >= 60:
		return RatingGood
	}
	return RatingReview
}

// Message is the learner-facing verdict for the band.
func (r Rating) Message() string {
	switch r {
	case RatingExcellent:
		return "🏆 ¡Excelente dominio del tema!"
	case RatingGood:
		return "👍 Buen trabajo. Refuerza los temas débiles."
	}
	return "📚 Necesitas repasar más. Enfócate en los temas donde fallaste."
}

// TopicSummary aggregates the answers of one topic.
type TopicSummary struct {
	Topic    string
	Answered int
	Correct  int
	ScoreSum float64
}

// Summary holds the data displayed on the summary screen.
type Summary struct {
	SessionID string
	Student   Student

	Total      int
	Correct    int
	ScoreSum   float64
	Percentage float64
	Rating     Rating

	Duration time.Duration
	Topics   []TopicSummary
	History  []AnsweredRecord
}

// Percentage returns 100*correct/total rounded to one decimal, or 0 when
// nothing was answered.
func Percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(correct)/float64(total)) / 10
}

// Summary builds the session summary from the history so far.
func (s *Session) Summary() Summary {
	sum := Summary{
		SessionID: s.state.ID,
		Student:   s.state.Student,
		History:   s.History(),
	}

	byTopic := make(map[string]*TopicSummary)
	for _, r := range s.state.History {
		sum.Total++
		sum.ScoreSum += r.Score
		ts, ok := byTopic[r.Topic]
		if !ok {
			ts = &TopicSummary{Topic: r.Topic}
			byTopic[r.Topic] = ts
		}
		ts.Answered++
		ts.ScoreSum += r.Score
		if r.Correct {
			sum.Correct++
			ts.Correct++
		}
	}
	for _, t := range s.state.Topics {
		if ts, ok := byTopic[t]; ok {
			sum.Topics = append(sum.Topics, *ts)
		}
	}

	sum.Percentage = Percentage(sum.Correct, sum.Total)
	sum.Rating = RatePercentage(sum.Percentage)

	end := s.state.FinishedAt
	if end.IsZero() {
		end = s.now()
	}
	sum.Duration = end.Sub(s.state.StartedAt)
	return sum
}
