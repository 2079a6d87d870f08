package logging

import (
	"time"

	"nidscore/detect"
)

type alertLogEntry struct {
	Timestamp time.Time        `json:"timestamp"`
	EventType string           `json:"event_type"`
	Proto     string           `json:"proto"`
	SrcIP     string           `json:"src_ip"`
	SrcPort   uint16           `json:"src_port"`
	DestIP    string           `json:"dest_ip"`
	DestPort  uint16           `json:"dest_port"`
	Alert     alertLogProperty `json:"alert"`
}

type alertLogProperty struct {
	SignatureID uint32 `json:"signature_id"`
	Rev         uint32 `json:"rev"`
	Signature   string `json:"signature"`
}

func newAlertLogEntry(a detect.Alert) *alertLogEntry {
	return &alertLogEntry{
		Timestamp: a.Time.UTC(),
		EventType: "alert",
		Proto:     a.Flow.Proto,
		SrcIP:     a.Flow.SrcIP,
		SrcPort:   a.Flow.SrcPort,
		DestIP:    a.Flow.DstIP,
		DestPort:  a.Flow.DstPort,
		Alert: alertLogProperty{
			SignatureID: a.SID,
			Rev:         a.Rev,
			Signature:   a.Msg,
		},
	}
}
