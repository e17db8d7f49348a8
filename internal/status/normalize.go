// Package status translates the enum strings stored in the database into the
// canonical labels shown to customers.  Stored values come from several
// generations of the schema: some keep their accents, some had accented
// characters replaced by underscores, some are snake_case duplicates.
package status

import "strings"

// Vocabulary maps every known stored spelling of one concept to its
// canonical label.  Fallback is returned for non-null input that matches no
// spelling; nil means "unknown is surfaced as null".
type Vocabulary struct {
	name      string
	canonical []string
	spellings map[string]string   // lowered raw spelling -> canonical
	raw       map[string][]string // canonical -> stored spellings
	Fallback  *string
}

func newVocabulary(name string, fallback *string, table map[string][]string, order []string) Vocabulary {
	v := Vocabulary{name: name, canonical: order, spellings: map[string]string{}, raw: table, Fallback: fallback}
	for _, c := range order {
		v.spellings[strings.ToLower(c)] = c
		for _, raw := range table[c] {
			v.spellings[strings.ToLower(raw)] = c
		}
	}
	return v
}

func ptr(s string) *string { return &s }

// Name identifies the vocabulary in error messages.
func (v Vocabulary) Name() string { return v.name }

// Canonical returns the canonical labels in display order.
func (v Vocabulary) Canonical() []string {
	out := make([]string, len(v.canonical))
	copy(out, v.canonical)
	return out
}

// Normalize returns the canonical label for raw.  Nil in, nil out.  Matching
// ignores case and surrounding whitespace.
func (v Vocabulary) Normalize(raw *string) *string {
	if raw == nil {
		return nil
	}
	if c, ok := v.spellings[strings.ToLower(strings.TrimSpace(*raw))]; ok {
		return ptr(c)
	}
	if v.Fallback == nil {
		return nil
	}
	return ptr(*v.Fallback)
}

// IsCanonical reports whether s is exactly one of the canonical labels.
func (v Vocabulary) IsCanonical(s string) bool {
	for _, c := range v.canonical {
		if c == s {
			return true
		}
	}
	return false
}

// RawSpellings lists every stored spelling that normalizes to the same
// label as value, the canonical label included.  Value may itself be any
// known spelling.  Unknown values return nil so callers can fall back to an
// exact match on what they were given.
func (v Vocabulary) RawSpellings(value string) []string {
	c, ok := v.spellings[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	out := []string{c}
	seen[c] = true
	for _, raw := range v.raw[c] {
		if !seen[raw] {
			seen[raw] = true
			out = append(out, raw)
		}
	}
	return out
}

// Canonical order statuses.
const (
	OrderPending   = "En attente de confirmation"
	OrderConfirmed = "Confirmée"
	OrderPreparing = "En préparation"
	OrderReady     = "Prête à récupérer"
	OrderPickedUp  = "Récupérée"
	OrderCancelled = "Annulée"
)

// Canonical payment statuses.
const (
	PaymentPendingOnSite = "En attente sur place"
	PaymentPaidOnSite    = "Payé sur place"
	PaymentPaidOnline    = "Payé en ligne"
	PaymentUnpaid        = "Non payé"
	PaymentPaid          = "Payé"
)

// Canonical delivery types.
const (
	DeliveryPickup   = "À emporter"
	DeliveryDelivery = "Livraison"
	DeliveryOnSite   = "Sur place"
)

// Canonical catering event statuses.
const (
	EventRequested = "Demande initiale"
	EventQuoteSent = "Devis envoyé"
	EventConfirmed = "Confirmé / Acompte reçu"
	EventPreparing = "En préparation"
	EventPaid      = "Payé intégralement"
	EventDone      = "Réalisé"
	EventCancelled = "Annulé"
)

var orderStatusSpellings = map[string][]string{
	OrderPending:   {"En_attente_de_confirmation", "en attente", "pending"},
	OrderConfirmed: {"Confirm_e", "Confirmee", "confirmed"},
	OrderPreparing: {"En pr_paration", "En_preparation", "En preparation"},
	OrderReady:     {"Pr_te _ r_cup_rer", "Prete a recuperer", "Pr_te_a_recuperer", "ready"},
	OrderPickedUp:  {"R_cup_r_e", "Recuperee", "picked_up"},
	OrderCancelled: {"Annul_e", "Annulee", "cancelled"},
}

var paymentStatusSpellings = map[string][]string{
	PaymentPendingOnSite: {"En_attente_sur_place", "En attente"},
	PaymentPaidOnSite:    {"Pay_ sur place", "Paye sur place", "Pay__sur_place"},
	PaymentPaidOnline:    {"Pay_ en ligne", "Paye en ligne", "Pay__en_ligne"},
	PaymentUnpaid:        {"Non pay_", "Non paye", "Non_paye"},
	PaymentPaid:          {"Pay_", "Paye"},
}

var deliveryTypeSpellings = map[string][]string{
	DeliveryPickup:   {"_ emporter", "a emporter", "A_EMPORTER", "emporter"},
	DeliveryDelivery: {"LIVRAISON"},
	DeliveryOnSite:   {"Sur_place", "SUR_PLACE"},
}

var eventStatusSpellings = map[string][]string{
	EventRequested: {"Demande_initiale"},
	EventQuoteSent: {"Devis envoy_", "Devis envoye", "Devis_envoye"},
	EventConfirmed: {"Confirm_ / Acompte re_u", "Confirme / Acompte recu", "Confirme_Acompte_recu"},
	EventPreparing: {"En pr_paration", "En preparation"},
	EventPaid:      {"Pay_ int_gralement", "Paye integralement"},
	EventDone:      {"R_alis_", "Realise"},
	EventCancelled: {"Annul_", "Annule"},
}

// The three order-related vocabularies do not share a fallback: an unknown
// payment status renders as pending on site, unknown order and delivery
// values render as null.
var (
	OrderStatus = newVocabulary("statut_commande", nil, orderStatusSpellings,
		[]string{OrderPending, OrderConfirmed, OrderPreparing, OrderReady, OrderPickedUp, OrderCancelled})
	PaymentStatus = newVocabulary("statut_paiement", ptr(PaymentPendingOnSite), paymentStatusSpellings,
		[]string{PaymentPendingOnSite, PaymentPaidOnSite, PaymentPaidOnline, PaymentUnpaid, PaymentPaid})
	DeliveryType = newVocabulary("type_livraison", nil, deliveryTypeSpellings,
		[]string{DeliveryPickup, DeliveryDelivery, DeliveryOnSite})
	EventStatus = newVocabulary("statut_evenement", nil, eventStatusSpellings,
		[]string{EventRequested, EventQuoteSent, EventConfirmed, EventPreparing, EventPaid, EventDone, EventCancelled})
)

// IsPaid is true exactly for the three "paid" payment labels.
func IsPaid(payment *string) bool {
	if payment == nil {
		return false
	}
	switch *payment {
	case PaymentPaidOnline, PaymentPaidOnSite, PaymentPaid:
		return true
	}
	return false
}

// Payment means labels.
const (
	MeansOnSite = "Sur place"
	MeansOnline = "En ligne"
)

// PaymentMeans derives the display label from the normalized payment status
// text: anything mentioning "sur place" is on site, everything else online.
func PaymentMeans(payment *string) string {
	if payment != nil && strings.Contains(strings.ToLower(*payment), "sur place") {
		return MeansOnSite
	}
	return MeansOnline
}
