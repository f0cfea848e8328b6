package entities

import (
	"strings"
	"time"
)

// MachineType classifies shop floor equipment
type MachineType string

const (
	StampingPress MachineType = "stamping_press"
	WeldingRobot  MachineType = "welding_robot"
	Conveyor      MachineType = "conveyor"
	PaintBooth    MachineType = "paint_booth"
	Assembly      MachineType = "assembly"
	OtherMachine  MachineType = "other"
)

// MachineStatus is the operating condition of a machine
type MachineStatus string

const (
	MachineOperational      MachineStatus = "operational"
	MachineUnderMaintenance MachineStatus = "under_maintenance"
	MachineBreakdown        MachineStatus = "breakdown"
	MachineDecommissioned   MachineStatus = "decommissioned"
)

// Machine is a piece of production equipment spare parts are fitted to
type Machine struct {
	ID                  string        `json:"id"`
	MachineCode         string        `json:"machine_code"`
	Name                string        `json:"name"`
	Type                MachineType   `json:"type"`
	LocationID          string        `json:"location_id"`
	Manufacturer        string        `json:"manufacturer,omitempty"`
	Model               string        `json:"model,omitempty"`
	SerialNumber        string        `json:"serial_number,omitempty"`
	InstallationDate    *time.Time    `json:"installation_date,omitempty"`
	LastMaintenanceDate *time.Time    `json:"last_maintenance_date,omitempty"`
	Status              MachineStatus `json:"status"`
	IsActive            bool          `json:"is_active"`
	CreatedAt           time.Time     `json:"created_at"`
}

// NewMachine creates a validated operational Machine
func NewMachine(code, name string, machineType MachineType, locationID string, at time.Time) (*Machine, error) {
	if strings.TrimSpace(code) == "" {
		return nil, NewValidationError("machine_code", nil, "machine code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, NewValidationError("name", nil, "machine name cannot be empty")
	}
	switch machineType {
	case StampingPress, WeldingRobot, Conveyor, PaintBooth, Assembly, OtherMachine:
	default:
		return nil, NewValidationError("type", machineType, "unknown machine type")
	}
	if locationID == "" {
		return nil, NewValidationError("location_id", nil, "machine location cannot be empty")
	}
	return &Machine{
		ID:          NewID(),
		MachineCode: strings.TrimSpace(code),
		Name:        name,
		Type:        machineType,
		LocationID:  locationID,
		Status:      MachineOperational,
		IsActive:    true,
		CreatedAt:   at,
	}, nil
}

// LinkReason records why a part was fitted to a machine
type LinkReason string

const (
	ReasonReplacement           LinkReason = "replacement"
	ReasonPreventiveMaintenance LinkReason = "preventive_maintenance"
	ReasonBreakdown             LinkReason = "breakdown"
	ReasonUpgrade               LinkReason = "upgrade"
)

// MachinePartLink records the installation history of a spare part on a machine
type MachinePartLink struct {
	ID            string     `json:"id"`
	MachineID     string     `json:"machine_id"`
	SparePartID   string     `json:"spare_part_id"`
	SerialNumber  string     `json:"serial_number,omitempty"`
	InstalledDate time.Time  `json:"installed_date"`
	InstalledBy   string     `json:"installed_by"`
	RemovedDate   *time.Time `json:"removed_date,omitempty"`
	RemovedBy     string     `json:"removed_by,omitempty"`
	Reason        LinkReason `json:"reason,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	IsActive      bool       `json:"is_active"`
}

// NewMachinePartLink records a part installed on a machine
func NewMachinePartLink(machineID, sparePartID, serialNumber, installedBy string, reason LinkReason, installed time.Time) (*MachinePartLink, error) {
	if machineID == "" {
		return nil, NewValidationError("machine_id", nil, "machine cannot be empty")
	}
	if sparePartID == "" {
		return nil, NewValidationError("spare_part_id", nil, "spare part cannot be empty")
	}
	if strings.TrimSpace(installedBy) == "" {
		return nil, NewValidationError("installed_by", nil, "installer cannot be empty")
	}
	switch reason {
	case "", ReasonReplacement, ReasonPreventiveMaintenance, ReasonBreakdown, ReasonUpgrade:
	default:
		return nil, NewValidationError("reason", reason, "unknown installation reason")
	}
	return &MachinePartLink{
		ID:            NewID(),
		MachineID:     machineID,
		SparePartID:   sparePartID,
		SerialNumber:  serialNumber,
		InstalledDate: installed,
		InstalledBy:   installedBy,
		Reason:        reason,
		IsActive:      true,
	}, nil
}

// Remove marks the link inactive
func (l *MachinePartLink) Remove(removedBy string, at time.Time) error {
	if !l.IsActive {
		return &InvalidTransitionError{
			Kind:   "machine_part_link",
			ID:     l.ID,
			From:   "removed",
			Reason: "part has already been removed",
		}
	}
	if strings.TrimSpace(removedBy) == "" {
		return NewValidationError("removed_by", nil, "remover cannot be empty")
	}
	if at.Before(l.InstalledDate) {
		return NewValidationError("removed_date", at, "removal cannot precede installation")
	}
	l.IsActive = false
	l.RemovedDate = timePtr(at)
	l.RemovedBy = removedBy
	return nil
}
