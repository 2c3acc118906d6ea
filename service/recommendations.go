package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/goliatone/go-property-listing/model"
)

// RecommendationListMessage accompanies every recommendations listing.
const RecommendationListMessage = "Recommendations retrieved successfully"

// Recommendations lets users point listings out to each other.
type Recommendations struct {
	repo  RecommendationRepository
	users UserDirectory
	options
}

// NewRecommendations builds the recommendation service.
func NewRecommendations(repo RecommendationRepository, users UserDirectory, opts ...Option) *Recommendations {
	return &Recommendations{repo: repo, users: users, options: buildOptions(opts)}
}

// Recommend records that actor suggested featureID to the user with email.
// It returns the stored recommendation and the recipient.
func (s *Recommendations) Recommend(ctx context.Context, actor primitive.ObjectID, email, featureID string) (model.Recommendation, model.UserSummary, error) {
	email = strings.TrimSpace(email)
	featureID = strings.TrimSpace(featureID)
	if email == "" || featureID == "" {
		return model.Recommendation{}, model.UserSummary{}, badRequest("Email and featureId are required")
	}

	sender, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return model.Recommendation{}, model.UserSummary{}, s.fail(err, "Recommending user not found")
	}
	if model.NormalizeEmail(sender.Email) == model.NormalizeEmail(email) {
		return model.Recommendation{}, model.UserSummary{}, badRequest("You cannot recommend a property to yourself")
	}

	recipient, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.Recommendation{}, model.UserSummary{}, s.fail(err, "User not found with this email")
	}

	exists, err := s.repo.Exists(ctx, actor, recipient.ID, featureID)
	if err != nil {
		return model.Recommendation{}, model.UserSummary{}, s.fail(err, "Not found")
	}
	if exists {
		return model.Recommendation{}, model.UserSummary{}, conflict("You have already recommended this property to this user")
	}

	rec, err := s.repo.Create(ctx, model.Recommendation{
		UserID:              actor,
		RecommendedToUserID: recipient.ID,
		FeatureID:           featureID,
		Status:              model.StatusPending,
		CreatedAt:           s.now(),
	})
	if err != nil {
		return model.Recommendation{}, model.UserSummary{}, s.fail(err, "Not found")
	}
	return rec, recipient.Summary(), nil
}

// List returns the recommendations actor received and sent.
func (s *Recommendations) List(ctx context.Context, actor primitive.ObjectID) (model.RecommendationList, bool, error) {
	list, hit, err := s.repo.List(ctx, actor)
	if err != nil {
		return model.RecommendationList{}, false, s.fail(err, "Not found")
	}
	list.Message = RecommendationListMessage
	return list, hit, nil
}

// SearchUsers finds users whose email contains term.
func (s *Recommendations) SearchUsers(ctx context.Context, term string) ([]model.UserSummary, bool, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, false, badRequest("Search word is required")
	}

	users, hit, err := s.users.Search(ctx, term)
	if err != nil {
		return nil, false, s.fail(err, "Not found")
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	return users, hit, nil
}

func (s *Recommendations) fail(err error, notFoundMessage string) error {
	if !isNotFound(err) && !isDuplicate(err) {
		s.logger.Error().Err(err).Msg("recommendation store failed")
	}
	return storeError(err, notFoundMessage, "You have already recommended this property to this user", "Internal server error")
}
