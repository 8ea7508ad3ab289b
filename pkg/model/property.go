package model

import "time"

type Property struct {
	ID              string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID         string    `json:"ownerId" bson:"owner_id"`
	Name            string    `json:"name" bson:"name"`
	Location        string    `json:"location" bson:"location"`
	Description     string    `json:"description,omitempty" bson:"description,omitempty"`
	UpiID           string    `json:"upiId,omitempty" bson:"upi_id,omitempty"`
	BankAccountName string    `json:"bankAccountName,omitempty" bson:"bank_account_name,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

func (p *Property) Summary() *PropertySummary {
	return &PropertySummary{
		ID:              p.ID,
		Name:            p.Name,
		Location:        p.Location,
		UpiID:           p.UpiID,
		BankAccountName: p.BankAccountName,
	}
}
