package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"lodgechat/internal/domain"
)

// Composer turns an intent plus retrieval output into the reply text.
// Grounding invariant for HOTEL_SEARCH: every hotel referenced in the reply
// comes from this request's RetrievalResult; the composer never fabricates
// listings. GENERAL replies may draw on the LLM's outside knowledge.
type Composer struct {
	inference domain.InferenceClient
}

func NewComposer(inf domain.InferenceClient) *Composer {
	return &Composer{inference: inf}
}

const quickReply = "Hi there! I'm your travel assistant. Ask me about hotels, resorts, or anywhere you'd like to stay."

const apologyReply = "Sorry, I'm having trouble answering that right now. Please try again in a moment."

const generalFallback = "I can help best with finding places to stay. Try asking me something like \"hotels in Cancun\"."

// Quick answers greetings from a canned template. No network call.
func (c *Composer) Quick() string { return quickReply }

// Apology is the degrade path for essential-step timeouts and failures.
func (c *Composer) Apology() string { return apologyReply }

// HotelSearch builds a grounded reply around the retrieval result.
func (c *Composer) HotelSearch(cq domain.ClassifiedQuery, res domain.RetrievalResult) string {
	n := len(res.Hotels)
	if n == 0 {
		return "I couldn't find any places matching that. Try a different city or fewer filters."
	}

	names := make([]string, 0, 3)
	backfilled := 0
	for i, h := range res.Hotels {
		if i < 3 {
			names = append(names, h.Name)
		}
		if !h.ExactMatch {
			backfilled++
		}
	}

	var b strings.Builder
	if n == 1 {
		b.WriteString("I found 1 place for you: ")
	} else {
		fmt.Fprintf(&b, "I found %d places for you, including ", n)
	}
	b.WriteString(strings.Join(names, ", "))
	b.WriteString(".")
	if city := res.Hotels[0].City; city != "" && res.Hotels[0].ExactMatch {
		fmt.Fprintf(&b, " The top pick is in %s", city)
		if rating := res.Hotels[0].Rating; rating > 0 {
			fmt.Fprintf(&b, ", rated %.1f", rating)
		}
		b.WriteString(".")
	}
	if backfilled > 0 {
		fmt.Fprintf(&b, " %d of these are close matches that don't meet every filter.", backfilled)
	}
	return b.String()
}

// General asks the LLM for a free-form reply, folding in recent session turns
// for multi-turn context. Provider failure degrades to a canned reply; a
// generation outage is never a server error. The second return is false when
// the fallback was used, so callers skip the cache write.
func (c *Composer) General(ctx context.Context, cq domain.ClassifiedQuery, history []domain.Turn) (string, bool) {
	var b strings.Builder
	b.WriteString("You are a concise, friendly travel assistant.\n")
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "- user: %s\n", t.Query)
		}
	}
	fmt.Fprintf(&b, "User asks: %s\nAnswer in one short paragraph.", cq.Raw)

	text, err := c.inference.Generate(ctx, b.String())
	if err != nil || strings.TrimSpace(text) == "" {
		log.Warn().Err(err).Msg("generation failed, using fallback reply")
		return generalFallback, false
	}
	return text, true
}
