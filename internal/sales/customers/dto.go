package customers

type CreateCustomerRequest struct {
	CompanyName   string  `json:"company_name" validate:"required,max=200"`
	NitCI         string  `json:"nit_ci" validate:"required,max=50"`
	Address       *string `json:"address,omitempty" validate:"omitempty,max=300"`
	ContactPerson *string `json:"contact_person,omitempty" validate:"omitempty,max=200"`
	ContactEmail  *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone  *string `json:"contact_phone,omitempty" validate:"omitempty,max=50"`
}

type CreateCustomerResponse struct {
	ID int64 `json:"id"`
}
