package models

// MessageChannel selects how a message is delivered to its recipients.
type MessageChannel string

const (
	ChannelInApp MessageChannel = "InApp"
	ChannelEmail MessageChannel = "Email"
)

// Valid reports whether c is a supported delivery channel.
func (c MessageChannel) Valid() bool {
	return c == ChannelInApp || c == ChannelEmail
}

// Message is one unit of communication. Threading: every message belongs to
// exactly one thread identified by RootMessageID. A new top-level message has
// its root patched to its own id right after insert (two-phase create);
// replies inherit the parent's root, or the parent's id when the parent is
// itself the root.
type Message struct {
	Base

	SenderProfileID uint    `gorm:"not null;index" json:"senderProfileId"`
	Sender          Profile `gorm:"foreignKey:SenderProfileID" json:"sender,omitempty"`

	Subject *string `gorm:"size:255" json:"subject,omitempty"`
	Body    string  `gorm:"not null" json:"body"`

	Channel MessageChannel `gorm:"not null;size:20;default:'InApp'" json:"channel"`

	// Optional link to the event the message is about.
	TargetEventID *uint `json:"targetEventId,omitempty"`

	ParentMessageID *uint    `json:"parentMessageId,omitempty"`
	ParentMessage   *Message `gorm:"foreignKey:ParentMessageID" json:"-"`

	// Indexed so thread traversal is O(thread size).
	RootMessageID *uint `gorm:"index" json:"rootMessageId,omitempty"`

	Recipients []MessageRecipient `gorm:"foreignKey:MessageID" json:"recipients,omitempty"`
}

// RootID resolves the thread identity: the explicit root, or the message's
// own id when it is the root.
func (m *Message) RootID() uint {
	if m.RootMessageID != nil {
		return *m.RootMessageID
	}
	return m.ID
}

// DeliveryStatus is the per-recipient delivery state.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "Sent"
	DeliveryDelivered DeliveryStatus = "Delivered"
	DeliveryFailed    DeliveryStatus = "Failed"
)

// MessageRecipient links one message to one recipient profile and tracks
// delivery and read state for that recipient.
type MessageRecipient struct {
	Base

	MessageID uint    `gorm:"not null;index" json:"messageId"`
	Message   Message `gorm:"foreignKey:MessageID" json:"-"`

	RecipientProfileID uint    `gorm:"not null;index" json:"recipientProfileId"`
	Recipient          Profile `gorm:"foreignKey:RecipientProfileID" json:"recipient,omitempty"`

	IsRead bool           `gorm:"default:false" json:"isRead"`
	Status DeliveryStatus `gorm:"not null;size:50;default:'Sent'" json:"status"`

	// Reference handed back by the external provider (email message id).
	ExternalReferenceID *string `gorm:"size:100" json:"externalReferenceId,omitempty"`
	FailureReason       *string `json:"failureReason,omitempty"`
}
