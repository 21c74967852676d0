package store

import "go.mongodb.org/mongo-driver/mongo"

// Outcome classifies the result of a single insert attempt. Duplicate is an
// expected, non-fatal outcome: the store rejected the insert because a
// document with the same id already exists.
type Outcome int

const (
	Inserted Outcome = iota
	Duplicate
	Failed
)

// String returns a human-readable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Classify maps an insert error to an Outcome. The returned error is non-nil
// only for Failed.
func Classify(err error) (Outcome, error) {
	if err == nil {
		return Inserted, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return Duplicate, nil
	}
	return Failed, err
}
