package request

type BookTicketRequest struct {
	EventID       string   `json:"eventId" validate:"required,uuid"`
	Seats         []string `json:"seats" validate:"required,min=1,max=20,unique,dive,required,max=10"`
	PaymentMethod string   `json:"paymentMethod" validate:"omitempty,oneof=card cash wallet"`
}

type CheckInRequest struct {
	Token string `json:"token" validate:"required"`
}
