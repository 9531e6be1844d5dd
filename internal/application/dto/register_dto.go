package dto

// CreateRegisterRequest alta de una caja física.
type CreateRegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
}

// RegisterResponse caja en respuestas.
type RegisterResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	IsActive bool   `json:"is_active"`
}

// CreateCompanyRequest alta de empresa (tenant).
type CreateCompanyRequest struct {
	Name    string `json:"name" validate:"required"`
	RNC     string `json:"rnc"  validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// CompanyResponse empresa en respuestas.
type CompanyResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	RNC     string `json:"rnc"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Status  string `json:"status"`
}
