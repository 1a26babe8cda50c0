package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"matvision-be/internal/dto"
	"matvision-be/internal/entity"
	"matvision-be/internal/repository/specification"
	"matvision-be/internal/repository/unitofwork"
	"matvision-be/pkg/analysis"
	"matvision-be/pkg/embedding"
	"matvision-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IEmbeddingConsumerService interface {
	Consume(ctx context.Context) error
}

// embeddingConsumerService renders finished assessments to plain text and
// indexes them for semantic search. Chunks for an assessment are replaced
// wholesale inside one transaction, so a re-embed never leaves a mix of
// old and new chunks.
type embeddingConsumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
}

func NewEmbeddingConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
) IEmbeddingConsumerService {
	return &embeddingConsumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *embeddingConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *embeddingConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedAssessmentMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Embedding assessment %s", payload.AssessmentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	assessment, err := uow.AssessmentRepository().FindOne(ctx, specification.ByID{ID: payload.AssessmentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get assessment %s: %v", payload.AssessmentId, err)
		msg.Nack()
		return
	}
	if assessment == nil {
		log.Printf("[WARN] Assessment not found: %s", payload.AssessmentId)
		msg.Ack() // Purged before the embed ran? Ack.
		return
	}

	content, err := renderAssessmentText(assessment)
	if err != nil {
		// A document that does not parse will not parse on redelivery either.
		log.Printf("[ERROR] Assessment %s has an unreadable document: %v", payload.AssessmentId, err)
		msg.Ack()
		return
	}

	// ChunkSize 1500 chars with 200 overlap keeps each chunk well inside the
	// embedding context limit.
	chunks := utils.SplitText(content, 1500, 200)
	log.Printf("[INFO] Assessment %s split into %d chunks", payload.AssessmentId, len(chunks))

	var newEmbeddings []*entity.AssessmentEmbedding
	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			log.Printf("[ERROR] Failed to embed chunk %d of assessment %s: %v", i, payload.AssessmentId, err)
			msg.Nack()
			return
		}

		newEmbeddings = append(newEmbeddings, &entity.AssessmentEmbedding{
			Id:             uuid.New(),
			AssessmentId:   assessment.Id,
			RequesterId:    assessment.RequesterId,
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			ChunkIndex:     i,
			CreatedAt:      time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if err := uow.AssessmentEmbeddingRepository().DeleteByAssessmentId(ctx, assessment.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	if len(newEmbeddings) > 0 {
		if err := uow.AssessmentEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Assessment %s indexed in %d chunks", payload.AssessmentId, len(newEmbeddings))
	msg.Ack()
}

// renderAssessmentText flattens the result document into readable prose so
// the embedding captures meaning rather than JSON structure.
func renderAssessmentText(a *entity.Assessment) (string, error) {
	var result analysis.Result
	if err := json.Unmarshal(a.Document, &result); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Athlete: %s\n", a.AthleteName))
	sb.WriteString(fmt.Sprintf("Analysis mode: %s\n", a.Mode))
	if a.Style != "" {
		sb.WriteString(fmt.Sprintf("Wrestling style: %s\n", a.Style))
	}
	sb.WriteString(fmt.Sprintf("Analyzed at: %s\n", a.CreatedAt.Format(time.RFC3339)))

	if sa := result.Assessment; sa != nil {
		sb.WriteString(fmt.Sprintf("\nOverall score: %d (standing %d, top %d, bottom %d)\n",
			sa.OverallScore, sa.PositionScores.Standing, sa.PositionScores.Top, sa.PositionScores.Bottom))

		writeSection(&sb, "Strengths", sa.Strengths)
		writeSection(&sb, "Weaknesses", sa.Weaknesses)
		writeSection(&sb, "Recommended drills", sa.RecommendedDrills)

		if sa.PositionReasoning.Standing != "" {
			sb.WriteString(fmt.Sprintf("\nStanding: %s\n", sa.PositionReasoning.Standing))
		}
		if sa.PositionReasoning.Top != "" {
			sb.WriteString(fmt.Sprintf("Top: %s\n", sa.PositionReasoning.Top))
		}
		if sa.PositionReasoning.Bottom != "" {
			sb.WriteString(fmt.Sprintf("Bottom: %s\n", sa.PositionReasoning.Bottom))
		}

		sb.WriteString(fmt.Sprintf("\nConditioning: %s (first half %d, second half %d)\n",
			sa.FatigueAnalysis.Conditioning, sa.FatigueAnalysis.FirstHalfScore, sa.FatigueAnalysis.SecondHalfScore))
		if sa.MatchResult.EstimatedWinner != "" {
			sb.WriteString(fmt.Sprintf("Estimated winner: %s (%s)\n", sa.MatchResult.EstimatedWinner, sa.MatchResult.ScoreEstimate))
		}
		st := sa.MatchStats
		sb.WriteString(fmt.Sprintf("Takedowns %d-%d, escapes %d, reversals %d, near fall points %d, penalties %d\n",
			st.TakedownsScored, st.TakedownsConceded, st.Escapes, st.Reversals, st.NearFallPoints, st.Penalties))
	}

	if sc := result.Scouting; sc != nil {
		if sc.Profile != "" {
			sb.WriteString(fmt.Sprintf("\nOpponent profile: %s\n", sc.Profile))
		}
		writeSection(&sb, "Attack patterns", sc.AttackPatterns)
		writeSection(&sb, "Defense patterns", sc.DefensePatterns)

		if sc.PositionTendencies.Standing != "" {
			sb.WriteString(fmt.Sprintf("\nStanding tendencies: %s\n", sc.PositionTendencies.Standing))
		}
		if sc.PositionTendencies.Top != "" {
			sb.WriteString(fmt.Sprintf("Top tendencies: %s\n", sc.PositionTendencies.Top))
		}
		if sc.PositionTendencies.Bottom != "" {
			sb.WriteString(fmt.Sprintf("Bottom tendencies: %s\n", sc.PositionTendencies.Bottom))
		}

		gp := sc.Gameplan
		if gp.OverallStrategy != "" {
			sb.WriteString(fmt.Sprintf("\nGameplan: %s\n", gp.OverallStrategy))
		}
		if gp.FirstPeriod != "" {
			sb.WriteString(fmt.Sprintf("First period: %s\n", gp.FirstPeriod))
		}
		if gp.SecondPeriod != "" {
			sb.WriteString(fmt.Sprintf("Second period: %s\n", gp.SecondPeriod))
		}
		if gp.ThirdPeriod != "" {
			sb.WriteString(fmt.Sprintf("Third period: %s\n", gp.ThirdPeriod))
		}
	}

	return sb.String(), nil
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
}
