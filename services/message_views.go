package services

import (
	"sort"
	"time"

	"crewmanager/models"
)

// ProfileRef is the compact sender/recipient reference embedded in message
// views.
type ProfileRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// MessageView is one entry of the sent/inbox/unified listings.
type MessageView struct {
	ID         uint         `json:"id"`
	Subject    *string      `json:"subject"`
	Body       string       `json:"body"`
	CreatedAt  time.Time    `json:"createdAt"`
	Sender     ProfileRef   `json:"sender"`
	Recipients []ProfileRef `json:"recipients"`
	IsRead     bool         `json:"isRead"`
	Type       string       `json:"type"` // "Sent" or "Received"
}

// ThreadEntry is one message of a thread in GetDetails, oldest first.
type ThreadEntry struct {
	ID         uint      `json:"id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"createdAt"`
	SenderID   uint      `json:"senderId"`
	SenderName string    `json:"senderName"`
}

// MessageDetails is the full single-message view with its thread.
type MessageDetails struct {
	ID         uint          `json:"id"`
	Subject    *string       `json:"subject"`
	Body       string        `json:"body"`
	CreatedAt  time.Time     `json:"createdAt"`
	Sender     ProfileRef    `json:"sender"`
	Recipients []ProfileRef  `json:"recipients"`
	Thread     []ThreadEntry `json:"thread"`
}

func recipientRefs(recipients []models.MessageRecipient) []ProfileRef {
	refs := make([]ProfileRef, 0, len(recipients))
	for _, r := range recipients {
		refs = append(refs, ProfileRef{ID: r.RecipientProfileID, Name: r.Recipient.Name})
	}
	return refs
}

// buildMessageView resolves read state and direction for one viewer. The
// sender always sees a message as read; a recipient without a delivery row
// also renders as read, absence never shows as unread.
func buildMessageView(m *models.Message, viewerID uint) MessageView {
	isSender := m.SenderProfileID == viewerID

	isRead := true
	if !isSender {
		for _, r := range m.Recipients {
			if r.RecipientProfileID == viewerID {
				isRead = r.IsRead
				break
			}
		}
	}

	viewType := "Received"
	if isSender {
		viewType = "Sent"
	}

	return MessageView{
		ID:         m.ID,
		Subject:    m.Subject,
		Body:       m.Body,
		CreatedAt:  m.CreatedAt,
		Sender:     ProfileRef{ID: m.SenderProfileID, Name: m.Sender.Name},
		Recipients: recipientRefs(m.Recipients),
		IsRead:     isRead,
		Type:       viewType,
	}
}

// assembleRecipients merges crew mates and boat owners into one
// de-duplicated, name-sorted recipient list.
func assembleRecipients(crewMates, owners []models.Profile) []RecipientView {
	seen := make(map[uint]bool, len(crewMates)+len(owners))
	views := make([]RecipientView, 0, len(crewMates)+len(owners))

	add := func(p models.Profile) {
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		views = append(views, RecipientView{ID: p.ID, Name: p.Name, Email: p.Email, Image: p.Image})
	}

	for _, p := range crewMates {
		add(p)
	}
	for _, p := range owners {
		add(p)
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views
}

// latestPerThread groups messages by thread root and keeps the most recent
// message of each group, returned newest first.
func latestPerThread(msgs []models.Message) []models.Message {
	latest := make(map[uint]models.Message)
	for _, m := range msgs {
		root := m.RootID()
		if cur, ok := latest[root]; !ok || m.CreatedAt.After(cur.CreatedAt) {
			latest[root] = m
		}
	}

	result := make([]models.Message, 0, len(latest))
	for _, m := range latest {
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result
}
