package models

import "time"

// Broker is carrier-independent reference data for freight brokers.
type Broker struct {
	PK        string    `dynamodbav:"PK" json:"-"`
	SK        string    `dynamodbav:"SK" json:"-"`
	ID        string    `dynamodbav:"broker_id" json:"id"`
	Name      string    `dynamodbav:"name" json:"name"`
	Email     string    `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Phone     string    `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	MCNumber  string    `dynamodbav:"mc_number,omitempty" json:"mc_number,omitempty"`
	CreatedAt time.Time `dynamodbav:"created_at" json:"created_at"`
	UpdatedAt time.Time `dynamodbav:"updated_at" json:"updated_at"`
}

// BrokerKey returns the composite key identifying a broker record.
func BrokerKey(brokerID string) (pk, sk string) {
	return "BROKER#" + brokerID, "META"
}
