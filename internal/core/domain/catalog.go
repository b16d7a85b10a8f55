package domain

type TherapyType string

const (
	TherapyCBT TherapyType = "CBT"
	TherapyIPT TherapyType = "IPT"
	TherapyACT TherapyType = "ACT"
	TherapyMET TherapyType = "MET"
	TherapyPDT TherapyType = "PDT"
)

// TherapyTypes перечисляет виды терапии, порядок значим:
// им определяются типы слотов врача по умолчанию
var TherapyTypes = []TherapyType{TherapyCBT, TherapyIPT, TherapyACT, TherapyMET, TherapyPDT}

type Day struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var Days = []Day{
	{ID: "mon", Label: "Пн"},
	{ID: "tue", Label: "Вт"},
	{ID: "wed", Label: "Ср"},
	{ID: "thu", Label: "Чт"},
	{ID: "fri", Label: "Пт"},
}

var Rooms = []int{10, 11, 12, 13}

var MorningSlots = []string{"08:30", "09:30", "10:30", "11:30"}

var AfternoonSlots = []string{"13:30", "14:30", "15:30"}

// AllSlots объединяет утренние и дневные интервалы в хронологическом порядке
var AllSlots = append(append([]string{}, MorningSlots...), AfternoonSlots...)

func IsTherapyType(value string) bool {
	for _, t := range TherapyTypes {
		if string(t) == value {
			return true
		}
	}
	return false
}

func IsDay(id string) bool {
	for _, d := range Days {
		if d.ID == id {
			return true
		}
	}
	return false
}

func IsRoom(room int) bool {
	for _, r := range Rooms {
		if r == room {
			return true
		}
	}
	return false
}

func IsTimeSlot(label string) bool {
	for _, t := range AllSlots {
		if t == label {
			return true
		}
	}
	return false
}
