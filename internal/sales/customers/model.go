package customers

import "time"

type Customer struct {
	ID            int64     `json:"id"`
	CompanyName   string    `json:"company_name"`
	NitCI         string    `json:"nit_ci"`
	Address       *string   `json:"address,omitempty"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	ContactEmail  *string   `json:"contact_email,omitempty"`
	ContactPhone  *string   `json:"contact_phone,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
