package domain

import "fmt"

type SlotStatus string

const (
	SlotStatusAssignable SlotStatus = "Assignable"
	SlotStatusInProgress SlotStatus = "In Progress"
)

func IsSlotStatus(value string) bool {
	return value == string(SlotStatusAssignable) || value == string(SlotStatusInProgress)
}

// Slot описывает назначаемый терапевтический слот врача.
// Пустые Day/Time и Room = 0 означают, что слот не размещен в сетке
type Slot struct {
	ID        string      `json:"id"`
	Type      TherapyType `json:"type"`
	Day       string      `json:"day"`
	Time      string      `json:"time"`
	Room      int         `json:"room"`
	Status    SlotStatus  `json:"status"`
	StartDate string      `json:"startDate"`
}

// IsPlaced: слот занимает ячейку сетки, только когда заданы все три координаты
func (s Slot) IsPlaced() bool {
	return s.Day != "" && s.Time != "" && s.Room != 0
}

type Doctor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slots []Slot `json:"slots"`
}

// DefaultRoster создает фиксированный состав врачей со слотами-шаблонами.
// ID врачей и слотов стабильны и никогда не берутся из удаленного стора
func DefaultRoster(doctorCount, slotsPerDoctor int) []Doctor {
	doctors := make([]Doctor, 0, doctorCount)

	for i := 0; i < doctorCount; i++ {
		slots := make([]Slot, 0, slotsPerDoctor)
		for j := 0; j < slotsPerDoctor; j++ {
			slots = append(slots, Slot{
				ID:     fmt.Sprintf("d%d-s%d", i+1, j+1),
				Type:   TherapyTypes[j%len(TherapyTypes)],
				Status: SlotStatusAssignable,
			})
		}

		doctors = append(doctors, Doctor{
			ID:    fmt.Sprintf("doctor-%d", i+1),
			Name:  fmt.Sprintf("Doctor %d", i+1),
			Slots: slots,
		})
	}

	return doctors
}

// CloneRoster делает глубокую копию списка врачей, чтобы снапшоты не делили память с состоянием
func CloneRoster(doctors []Doctor) []Doctor {
	cloned := make([]Doctor, len(doctors))
	for i, doc := range doctors {
		cloned[i] = doc
		cloned[i].Slots = append([]Slot{}, doc.Slots...)
	}
	return cloned
}
