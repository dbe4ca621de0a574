package estimator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"resalelens/server/internal/completion"
	"resalelens/server/internal/models"
)

const systemPrompt = `You are an expert appraiser of second-hand goods in the Korean resale market.
Estimate a realistic resale price in KRW for the item the user describes. If a photo is attached, use it to judge condition.
Respond in exactly this format, one line each, and nothing else:
Estimated Price: [price] KRW
Analysis Basis: [why this price, in Korean]
Market Outlook: [short market outlook, in Korean]
Trading Tips: [short selling advice, in Korean]`

// ExternalModel forwards the submission to a completion collaborator and parses its reply
type ExternalModel struct {
	collaborator completion.Collaborator
}

func NewExternalModel(collaborator completion.Collaborator) *ExternalModel {
	return &ExternalModel{collaborator: collaborator}
}

func (e *ExternalModel) Name() string { return "external" }

// BuildRequest renders the fixed instruction for a submission
func BuildRequest(sub *models.ItemSubmission) completion.Request {
	var user strings.Builder
	fmt.Fprintf(&user, "Category: %s (%s)\n", sub.Category.Label(), sub.Category)
	fmt.Fprintf(&user, "Description: %s\n", sub.Description)
	if sub.HasImage() {
		user.WriteString("A photo of the item is attached.\n")
	}

	return completion.Request{
		System:    systemPrompt,
		User:      user.String(),
		Image:     sub.Image,
		ImageMIME: sub.ImageMIME,
	}
}

// Estimate degrades to an estimate without amount when the collaborator fails
func (e *ExternalModel) Estimate(ctx context.Context, sub *models.ItemSubmission, _ *rand.Rand) (*models.PriceEstimate, error) {
	reply, err := e.collaborator.Complete(ctx, BuildRequest(sub))
	if err != nil {
		return &models.PriceEstimate{
			Basis:    "AI 분석 서비스에 연결하지 못해 시세를 산출하지 못했습니다.",
			Strategy: e.Name(),
		}, fmt.Errorf("%w: %v", ErrCollaborator, err)
	}

	est := ParseReply(reply)
	est.Strategy = e.Name()
	if est.Basis == "" && est.Amount == nil {
		est.Basis = "AI 응답에서 가격 정보를 찾지 못했습니다."
	}
	return est, nil
}
