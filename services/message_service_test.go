package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crewmanager/apperrors"
	"crewmanager/models"
	"crewmanager/utils"
)

func newMessageService(t *testing.T, db *gorm.DB, strict bool) *MessageService {
	t.Helper()
	return NewMessageService(db, testLog(), nil, strict)
}

func subj(s string) *string { return &s }

func TestSendCreatesSelfRootedThread(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	sender := seedProfile(t, db, "Alice")
	recipient := seedProfile(t, db, "Bob")

	message, err := svc.Send("Alice", SendParams{
		SenderProfileID:     sender.ID,
		RecipientProfileIDs: []uint{recipient.ID},
		Subject:             subj("Weekend sail"),
		Body:                "Who is in?",
	})
	require.NoError(t, err)

	var got models.Message
	require.NoError(t, db.First(&got, message.ID).Error)
	require.NotNil(t, got.RootMessageID)
	assert.Equal(t, got.ID, *got.RootMessageID)
	assert.Nil(t, got.ParentMessageID)
	assert.Equal(t, models.ChannelInApp, got.Channel)

	var rows []models.MessageRecipient
	require.NoError(t, db.Where("message_id = ?", message.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, recipient.ID, rows[0].RecipientProfileID)
	assert.False(t, rows[0].IsRead)
	assert.Equal(t, models.DeliverySent, rows[0].Status)
}

func TestSendUnknownRecipientLenientVsStrict(t *testing.T) {
	db := newTestDB(t)
	sender := seedProfile(t, db, "Alice")
	recipient := seedProfile(t, db, "Bob")

	lenient := newMessageService(t, db, false)
	message, err := lenient.Send("Alice", SendParams{
		SenderProfileID:     sender.ID,
		RecipientProfileIDs: []uint{recipient.ID, 999},
		Body:                "hello",
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.MessageRecipient{}).Where("message_id = ?", message.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	strict := newMessageService(t, db, true)
	_, err = strict.Send("Alice", SendParams{
		SenderProfileID:     sender.ID,
		RecipientProfileIDs: []uint{recipient.ID, 999},
		Body:                "hello",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestReplyInheritsThread(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")
	carol := seedProfile(t, db, "Carol")

	eventID := uint(42)
	root, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID, carol.ID},
		Subject:             subj("Regatta crew"),
		Body:                "Need two more",
		TargetEventID:       &eventID,
	})
	require.NoError(t, err)

	// Chain of replies: Bob answers Alice, Alice answers Bob's reply.
	reply1, err := svc.Reply("Bob", root.ID, ReplyParams{SenderProfileID: bob.ID, Body: "Count me in"})
	require.NoError(t, err)
	reply2, err := svc.Reply("Alice", reply1.ID, ReplyParams{SenderProfileID: alice.ID, Body: "Great"})
	require.NoError(t, err)

	for _, reply := range []*models.Message{reply1, reply2} {
		require.NotNil(t, reply.RootMessageID)
		assert.Equal(t, root.ID, *reply.RootMessageID)
		require.NotNil(t, reply.TargetEventID)
		assert.Equal(t, eventID, *reply.TargetEventID)
	}

	// The prefix stacks per reply depth, no collapsing.
	require.NotNil(t, reply1.Subject)
	assert.Equal(t, "Re: Regatta crew", *reply1.Subject)
	require.NotNil(t, reply2.Subject)
	assert.Equal(t, "Re: Re: Regatta crew", *reply2.Subject)

	// A reply goes to the parent's sender only.
	var rows []models.MessageRecipient
	require.NoError(t, db.Where("message_id = ?", reply1.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, alice.ID, rows[0].RecipientProfileID)

	rows = nil
	require.NoError(t, db.Where("message_id = ?", reply2.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, bob.ID, rows[0].RecipientProfileID)
}

func TestReplyToMissingParent(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")

	_, err := svc.Reply("Alice", 999, ReplyParams{SenderProfileID: alice.ID, Body: "into the void"})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMailboxViews(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	root, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID},
		Subject:             subj("Hello"),
		Body:                "first",
	})
	require.NoError(t, err)
	reply, err := svc.Reply("Bob", root.ID, ReplyParams{SenderProfileID: bob.ID, Body: "second"})
	require.NoError(t, err)

	sent, err := svc.ListForProfile(alice.ID, "sent")
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, root.ID, sent[0].ID)
	assert.Equal(t, "Sent", sent[0].Type)
	assert.True(t, sent[0].IsRead)

	inbox, err := svc.ListForProfile(bob.ID, "inbox")
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, root.ID, inbox[0].ID)
	assert.False(t, inbox[0].IsRead)

	// Unified view collapses the thread to its latest message for both
	// participants.
	for _, viewer := range []uint{alice.ID, bob.ID} {
		all, err := svc.ListForProfile(viewer, "")
		require.NoError(t, err)
		require.Len(t, all, 1, "viewer %d", viewer)
		assert.Equal(t, reply.ID, all[0].ID)
	}
}

func TestGetDetailsMarksReadAndThreads(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")
	carol := seedProfile(t, db, "Carol")

	root, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID},
		Subject:             subj("Thread"),
		Body:                "msg 1",
	})
	require.NoError(t, err)

	parent := root
	for i := 2; i <= 4; i++ {
		from := bob
		if i%2 == 1 {
			from = alice
		}
		parent, err = svc.Reply(from.Name, parent.ID, ReplyParams{SenderProfileID: from.ID, Body: fmt.Sprintf("msg %d", i)})
		require.NoError(t, err)
	}

	count, err := svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	details, err := svc.GetDetails(root.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, details.Thread, 4)
	for i, entry := range details.Thread {
		assert.Equal(t, fmt.Sprintf("msg %d", i+1), entry.Body)
	}

	// Viewing decremented the unread count for that message.
	count, err = svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// A non-participant may not read the message.
	_, err = svc.GetDetails(root.ID, carol.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = svc.GetDetails(999, bob.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestMarkRead(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	message, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID},
		Body:                "ping",
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkRead(message.ID, bob.ID))

	count, err := svc.UnreadCount(bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	err = svc.MarkRead(message.ID, alice.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestEmailChannelWithoutMailerRecordsFailure(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	message, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID},
		Subject:             subj("By mail"),
		Body:                "hello",
		Channel:             models.ChannelEmail,
	})
	require.NoError(t, err)

	var row models.MessageRecipient
	require.NoError(t, db.Where("message_id = ?", message.ID).First(&row).Error)
	assert.Equal(t, models.DeliveryFailed, row.Status)
	require.NotNil(t, row.FailureReason)
}

type stubMailer struct {
	sent []string
}

func (m *stubMailer) Send(toEmail, toName, subject, body string) (string, error) {
	m.sent = append(m.sent, toEmail)
	return fmt.Sprintf("ref-%d", len(m.sent)), nil
}

var _ utils.Mailer = (*stubMailer)(nil)

func TestEmailChannelDelivers(t *testing.T) {
	db := newTestDB(t)
	mailer := &stubMailer{}
	svc := NewMessageService(db, testLog(), mailer, false)
	alice := seedProfile(t, db, "Alice")
	bob := seedProfile(t, db, "Bob")

	message, err := svc.Send("Alice", SendParams{
		SenderProfileID:     alice.ID,
		RecipientProfileIDs: []uint{bob.ID},
		Subject:             subj("By mail"),
		Body:                "hello",
		Channel:             models.ChannelEmail,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{bob.Email}, mailer.sent)

	var row models.MessageRecipient
	require.NoError(t, db.Where("message_id = ?", message.ID).First(&row).Error)
	assert.Equal(t, models.DeliveryDelivered, row.Status)
	require.NotNil(t, row.ExternalReferenceID)
	assert.Equal(t, "ref-1", *row.ExternalReferenceID)
}

func TestListAvailableRecipients(t *testing.T) {
	db := newTestDB(t)
	svc := newMessageService(t, db, false)
	owner := seedProfile(t, db, "Alice")
	member := seedProfile(t, db, "Bob")
	pending := seedProfile(t, db, "Carol")
	outsider := seedProfile(t, db, "Dave")

	boat := seedBoat(t, db, "Windward", owner.ID)
	seedCrew(t, db, member.ID, boat.ID, models.CrewStatusAccepted, false)
	seedCrew(t, db, pending.ID, boat.ID, models.CrewStatusPending, false)

	otherBoat := seedBoat(t, db, "Leeward", outsider.ID)
	_ = otherBoat

	// The member sees the owner but not the pending applicant or the
	// outsider.
	recipients, err := svc.ListAvailableRecipients(member.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, owner.ID, recipients[0].ID)

	// The owner sees the accepted member.
	recipients, err = svc.ListAvailableRecipients(owner.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, member.ID, recipients[0].ID)

	// No shared boats at all.
	recipients, err = svc.ListAvailableRecipients(pending.ID)
	require.NoError(t, err)
	assert.Empty(t, recipients)
}
