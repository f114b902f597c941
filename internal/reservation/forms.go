package reservation

import "context"

func (e *Engine) UpdateContact(ctx context.Context, patch ContactPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	if !e.initialized {
		return ErrNotInitialized
	}
	setIf(&e.contact.Email, patch.Email)
	setIf(&e.contact.EmailConfirmation, patch.EmailConfirmation)
	setIf(&e.contact.Phone, patch.Phone)
	return e.persistLocked(ctx)
}

func (e *Engine) UpdateCheckout(ctx context.Context, patch CheckoutPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	if !e.initialized {
		return ErrNotInitialized
	}
	setIf(&e.promoCode, patch.PromoCode)
	setIf(&e.paymentMethod, patch.PaymentMethod)
	if patch.PolicyAccepted != nil {
		e.policyAccepted = *patch.PolicyAccepted
	}
	return e.persistLocked(ctx)
}

// UpdatePassenger edits the non-document fields of one passenger form.
// Document numbers go through SetDocumentNumber.
func (e *Engine) UpdatePassenger(ctx context.Context, index int, patch PassengerPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.touchLocked()

	if index < 0 || index >= len(e.passengers) {
		return ErrPassengerIndex
	}
	p := &e.passengers[index]
	setIf(&p.FirstName, patch.FirstName)
	setIf(&p.LastName, patch.LastName)
	setIf(&p.BirthDate, patch.BirthDate)
	setIf(&p.Gender, patch.Gender)
	return e.persistLocked(ctx)
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
