package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"CityCard/internal/battle/entity"
	"CityCard/internal/battle/infra/persistence/model"
	"CityCard/modules/kit/errx"
)

const defaultCollectionName = "round_report"

type ReportRepository struct {
	coll *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{
		coll: db.Collection(defaultCollectionName),
	}
}

func (r *ReportRepository) Save(ctx context.Context, rep *entity.RoundReport) error {
	if rep == nil {
		return nil
	}
	if r == nil || r.coll == nil {
		return errx.ErrInvalidSetup.WithData("reason", "mongodb report collection is nil")
	}
	doc := model.ReportToDoc(rep)
	_, err := r.coll.ReplaceOne(
		ctx,
		bson.M{"_id": doc.Id},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errx.ErrUnavailable.WithCause(err).WithData("room", rep.Room).WithData("round", rep.Round)
	}
	return nil
}

func (r *ReportRepository) Latest(ctx context.Context, room string) (*entity.RoundReport, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "round", Value: -1}})
	return r.findOne(ctx, bson.M{"room": room}, opts)
}

func (r *ReportRepository) ByRound(ctx context.Context, room string, round int) (*entity.RoundReport, error) {
	return r.findOne(ctx, bson.M{"_id": model.DocID(room, round)})
}

func (r *ReportRepository) findOne(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOneOptions]) (*entity.RoundReport, error) {
	if r == nil || r.coll == nil {
		return nil, errx.ErrInvalidSetup.WithData("reason", "mongodb report collection is nil")
	}
	var doc model.ReportDoc
	err := r.coll.FindOne(ctx, filter, opts...).Decode(&doc)
	switch {
	case err == nil:
		return model.DocToReport(doc), nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, errx.ErrNotFound.WithData("filter", filter)
	default:
		return nil, errx.ErrUnavailable.WithCause(err)
	}
}
