package ops

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/sauti-platform/sauti/src/queue"
)

// DiscordAlerter posts dead-lettered jobs to an operations channel. It is
// optional: with no token configured, alerts go to the process log only.
type DiscordAlerter struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordAlerter(token, channelID string) (*DiscordAlerter, error) {
	if token == "" || channelID == "" {
		return &DiscordAlerter{}, nil
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordAlerter{session: session, channelID: channelID}, nil
}

func (a *DiscordAlerter) JobBuried(ctx context.Context, job queue.Job, lastErr error) {
	msg := fmt.Sprintf("job %s (%s) dead after %d attempts: %v", job.ID, job.Kind, job.Attempts, lastErr)
	log.Printf("ops: %s", msg)
	if a.session == nil {
		return
	}
	if _, err := a.session.ChannelMessageSend(a.channelID, ":rotating_light: "+msg); err != nil {
		log.Printf("ops: discord alert: %v", err)
	}
}
