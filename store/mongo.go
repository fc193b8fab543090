package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pixshare/models"
)

type MongoPosts struct {
	coll *mongo.Collection
}

func NewMongoPosts(coll *mongo.Collection) *MongoPosts {
	return &MongoPosts{coll: coll}
}

func (s *MongoPosts) Insert(ctx context.Context, p *models.Post) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, p)
	return err
}

func (s *MongoPosts) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (f PostFilter) query() bson.M {
	q := bson.M{}
	if f.OwnerID != nil {
		q["userId"] = *f.OwnerID
	}
	if f.PublicOnly {
		q["isPrivate"] = false
	}
	if f.Search != "" {
		q["$or"] = bson.A{
			bson.M{"tags": f.Search},
			bson.M{"caption": bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}},
		}
	}
	return q
}

func (s *MongoPosts) List(ctx context.Context, f PostFilter, skip, limit int64) ([]models.Post, int64, error) {
	query := f.query()

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, err
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (u PostUpdate) set() bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Caption != nil {
		set["caption"] = *u.Caption
	}
	if u.Tags != nil {
		set["tags"] = u.Tags
	}
	if u.IsPrivate != nil {
		set["isPrivate"] = *u.IsPrivate
	}
	return set
}

func (s *MongoPosts) Update(ctx context.Context, id primitive.ObjectID, u PostUpdate) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": u.set()})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPosts) AddLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$addToSet": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPosts) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"likes": userID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPosts) AddComment(ctx context.Context, postID primitive.ObjectID, c models.Comment) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": c}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoPosts) RemoveComment(ctx context.Context, postID, commentID primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 || res.ModifiedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoUsers struct {
	coll *mongo.Collection
}

func NewMongoUsers(coll *mongo.Collection) *MongoUsers {
	return &MongoUsers{coll: coll}
}

func (s *MongoUsers) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoUsers) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUsers) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	result := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}

	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

func (u UserUpdate) set() bson.M {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if u.Username != nil {
		set["username"] = *u.Username
	}
	if u.Bio != nil {
		set["bio"] = *u.Bio
	}
	if u.IsPrivate != nil {
		set["isPrivate"] = *u.IsPrivate
	}
	if u.Avatar != nil {
		set["avatar"] = *u.Avatar
	}
	if u.AvatarMediaID != nil {
		set["avatarMediaId"] = *u.AvatarMediaID
	}
	return set
}

func (s *MongoUsers) Update(ctx context.Context, id primitive.ObjectID, u UserUpdate) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": u.set()})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUsers) IncPostCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"totalPosts": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
