package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify_NilError(t *testing.T) {
	outcome, err := Classify(nil)
	assert.Equal(t, Inserted, outcome)
	assert.NoError(t, err)
}

func TestClassify_DuplicateKey(t *testing.T) {
	dup := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "E11000 duplicate key error"},
		},
	}

	outcome, err := Classify(dup)
	assert.Equal(t, Duplicate, outcome)
	assert.NoError(t, err)
}

func TestClassify_BulkDuplicateKey(t *testing.T) {
	dup := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Code: 11000}},
		},
	}

	outcome, err := Classify(dup)
	assert.Equal(t, Duplicate, outcome)
	assert.NoError(t, err)
}

func TestClassify_OtherError(t *testing.T) {
	boom := errors.New("connection reset")

	outcome, err := Classify(boom)
	assert.Equal(t, Failed, outcome)
	assert.ErrorIs(t, err, boom)
}

func TestClassify_NonDuplicateWriteException(t *testing.T) {
	we := mongo.WriteException{
		WriteErrors: mongo.WriteErrors{
			{Code: 2, Message: "BadValue"},
		},
	}

	outcome, err := Classify(we)
	assert.Equal(t, Failed, outcome)
	assert.Error(t, err)
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "inserted", Inserted.String())
	assert.Equal(t, "duplicate", Duplicate.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Outcome(99).String())
}
