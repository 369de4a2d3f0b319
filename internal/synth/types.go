package synth

import (
	"slices"

	"golang.org/x/text/language"
)

// Category of a municipal service complaint.
type Category string

const (
	CategorySanitation      Category = "Sanitation"
	CategoryRoadMaintenance Category = "Road Maintenance"
	CategoryStreetLighting  Category = "Street Lighting"
	CategoryWaterSupply     Category = "Water Supply"
	CategoryWasteCollection Category = "Waste Collection"
	CategoryParksGardens    Category = "Parks & Gardens"
	CategoryDrainage        Category = "Drainage"
	CategoryElectricity     Category = "Electricity"
)

// Categories lists every category in sampling order.
var Categories = []Category{
	CategorySanitation,
	CategoryRoadMaintenance,
	CategoryStreetLighting,
	CategoryWaterSupply,
	CategoryWasteCollection,
	CategoryParksGardens,
	CategoryDrainage,
	CategoryElectricity,
}

// EscalationCategories are the only categories whose tickets may escalate.
var EscalationCategories = []Category{CategorySanitation, CategoryWaterSupply}

func (c Category) EscalationProne() bool { return slices.Contains(EscalationCategories, c) }

// Ward is an administrative sub-area.
type Ward string

const (
	WardDharavi     Ward = "Dharavi"
	WardBandraWest  Ward = "Bandra West"
	WardAndheriEast Ward = "Andheri East"
	WardColaba      Ward = "Colaba"
	WardPowai       Ward = "Powai"
	WardKurla       Ward = "Kurla"
	WardBorivali    Ward = "Borivali"
	WardMalad       Ward = "Malad"
	WardGoregaon    Ward = "Goregaon"
	WardVileParle   Ward = "Vile Parle"
)

var Wards = []Ward{
	WardDharavi,
	WardBandraWest,
	WardAndheriEast,
	WardColaba,
	WardPowai,
	WardKurla,
	WardBorivali,
	WardMalad,
	WardGoregaon,
	WardVileParle,
}

// HighDensityWards receive the sampling bias and are the only wards where escalation happens.
var HighDensityWards = []Ward{WardDharavi, WardKurla}

func (w Ward) HighDensity() bool { return slices.Contains(HighDensityWards, w) }

// Channel the citizen used to file the ticket.
type Channel string

const (
	ChannelMobileApp    Channel = "mobile_app"
	ChannelWebPortal    Channel = "web_portal"
	ChannelPhoneHotline Channel = "phone_hotline"
	ChannelWalkIn       Channel = "walk_in"
)

var Channels = []Channel{ChannelMobileApp, ChannelWebPortal, ChannelPhoneHotline, ChannelWalkIn}

// Language is a BCP 47 language code.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageMarathi Language = "mr"
	LanguageHindi   Language = "hi"
)

var Languages = []Language{LanguageEnglish, LanguageMarathi, LanguageHindi}

// Tag returns the parsed language tag.
func (l Language) Tag() (language.Tag, error) { return language.Parse(string(l)) }

// Priority as claimed by the citizen.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Location of the reported issue. Pincode and coordinates are not tied to the ward.
type Location struct {
	Ward    Ward    `json:"ward"`
	Pincode string  `json:"pincode"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Ticket is one synthetic complaint record. Field order is the serialized key order.
type Ticket struct {
	TicketID        string   `json:"ticket_id"`
	CitizenIDHash   string   `json:"citizen_id_hash"`
	PhoneHash       string   `json:"phone_hash"`
	SubmittedAt     string   `json:"submitted_at"`
	Location        Location `json:"location"`
	Category        Category `json:"category"`
	Subcategory     string   `json:"subcategory"`
	Description     string   `json:"description"`
	Photos          []string `json:"photos"`
	PriorityClaimed Priority `json:"priority_claimed"`
	Language        Language `json:"language"`
	Channel         Channel  `json:"channel"`
	WillEscalate    bool     `json:"_label_will_escalate"`
	PriorityScore   float64  `json:"_label_priority_score"`
}
