package db

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nazotronic/Tourify/internal/models"
	"github.com/nazotronic/Tourify/internal/utils"
)

// InsertOne inserts a document into the collection, generating an id if the
// document has none. On an _id duplicate key collision the id is regenerated
// and the insert retried. The inserted document is returned with its id set.
func InsertOne(ctx context.Context, collection *mongo.Collection, doc models.IBase) (models.IBase, error) {
	doc.GenIDIfEmpty()

	operation := func() error {
		_, err := collection.InsertOne(ctx, doc)
		if err != nil && IsMongoDuplicateKeyError(err) {
			// New id for the next attempt
			doc.SetID(utils.NewSixID())
		}
		return err
	}

	if err := Try(operation); err != nil {
		return nil, err
	}
	return doc, nil
}
