package dbclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func TestAcceptedBeforeError(t *testing.T) {
	dup := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 3, Code: 11000, Message: "E11000 duplicate key error"}},
		},
	}
	assert.Equal(t, 3, acceptedBeforeError(dup))
	assert.Equal(t, 3, acceptedBeforeError(fmt.Errorf("insertMany customers: %w", dup)))

	multi := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{
			{WriteError: mongo.WriteError{Index: 7}},
			{WriteError: mongo.WriteError{Index: 2}},
		},
	}
	assert.Equal(t, 2, acceptedBeforeError(multi))

	assert.Zero(t, acceptedBeforeError(mongo.BulkWriteException{}))
	assert.Zero(t, acceptedBeforeError(context.DeadlineExceeded))
	assert.Zero(t, acceptedBeforeError(errors.New("server selection timeout")))
}
