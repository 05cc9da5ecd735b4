package service

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/obtain/internal/catalog/domain"
	"gorm.io/datatypes"
)

type sampleTool struct {
	name        string
	description string
	detailed    string
	category    string
	pricing     domain.Pricing
	website     string
	listing     domain.ListingType
	tags        []string
	features    []string
	rating      float64
}

var sampleTools = []sampleTool{
	{
		name:        "ChatGPT",
		description: "Advanced AI chatbot for conversations, writing, and problem-solving",
		detailed:    "ChatGPT is a conversational AI developed by OpenAI. It can assist with writing, coding, analysis and creative work.",
		category:    "text-generation",
		pricing:     domain.PricingFreemium,
		website:     "https://chat.openai.com",
		listing:     domain.ListingFeatured,
		tags:        []string{"conversation", "writing", "coding", "analysis"},
		features:    []string{"Natural conversation", "Code generation", "Text analysis", "Creative writing"},
		rating:      4.8,
	},
	{
		name:        "Midjourney",
		description: "AI-powered image generation from text descriptions",
		detailed:    "Midjourney is an independent research lab exploring new mediums of thought.",
		category:    "image-generation",
		pricing:     domain.PricingPaid,
		website:     "https://midjourney.com",
		listing:     domain.ListingVerified,
		tags:        []string{"art", "design", "creativity", "images"},
		features:    []string{"High-quality images", "Artistic styles", "Discord integration", "Commercial use"},
		rating:      4.7,
	},
	{
		name:        "GitHub Copilot",
		description: "AI pair programmer that helps you write code faster",
		detailed:    "GitHub Copilot is an AI coding assistant that helps developers write code faster and with less effort.",
		category:    "development",
		pricing:     domain.PricingPaid,
		website:     "https://github.com/features/copilot",
		listing:     domain.ListingVerified,
		tags:        []string{"coding", "programming", "development", "productivity"},
		features:    []string{"Code completion", "Multiple languages", "IDE integration", "Context awareness"},
		rating:      4.6,
	},
}

// SampleTools builds the demo catalog. Samples are listed directly and do
// not pass through review, so verification follows the tier.
func SampleTools(genID *snowflake.Node, now time.Time) []*domain.Tool {
	tools := make([]*domain.Tool, 0, len(sampleTools))
	for _, sample := range sampleTools {
		detailed := sample.detailed
		tool := &domain.Tool{
			ID:                  genID.Generate().Int64(),
			Slug:                slug.Make(sample.name),
			Name:                sample.name,
			Description:         sample.description,
			DetailedDescription: &detailed,
			Category:            sample.category,
			Pricing:             sample.pricing,
			WebsiteURL:          sample.website,
			ListingType:         sample.listing,
			Tags:                datatypes.JSONSlice[string](sample.tags),
			Features:            datatypes.JSONSlice[string](sample.features),
			Rating:              sample.rating,
			IsActive:            true,
			IsVerified:          sample.listing.Verifies(),
			DateAdded:           now,
			UpdatedAt:           now,
		}
		if tool.IsVerified {
			verifiedAt := now
			tool.VerificationDate = &verifiedAt
		}
		tools = append(tools, tool)
	}
	return tools
}
