package model

import (
	"encoding/json"
	"strconv"
	"time"

	"CityCard/internal/battle/entity"
)

// RoundReport mysql 行：检索字段单列存，完整战报放 JSON 列。
type RoundReport struct {
	Id        int64     `gorm:"column:id;type:bigint;comment:战报ID;primaryKey;not null;" json:"id"`
	Room      string    `gorm:"column:room;type:varchar(64);comment:房间;not null;uniqueIndex:uk_room_round,priority:1;" json:"room"`
	Round     int       `gorm:"column:round;type:int UNSIGNED;comment:回合;not null;uniqueIndex:uk_room_round,priority:2;" json:"round"`
	Destroyed int       `gorm:"column:destroyed;type:int UNSIGNED;comment:攻破城池数;not null;default:0;" json:"destroyed"`
	Payload   string    `gorm:"column:payload;type:longtext;comment:战报JSON;not null;" json:"payload"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;not null;default:CURRENT_TIMESTAMP;" json:"created_at"`
}

func (m *RoundReport) TableName() string {
	return "round_report"
}

func ReportToRow(r *entity.RoundReport) (*RoundReport, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return &RoundReport{
		Id:        r.ID,
		Room:      r.Room,
		Round:     r.Round,
		Destroyed: r.DestroyedCount(),
		Payload:   string(raw),
		CreatedAt: r.CreatedAt,
	}, nil
}

func RowToReport(m *RoundReport) (*entity.RoundReport, error) {
	var r entity.RoundReport
	if err := json.Unmarshal([]byte(m.Payload), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ReportDoc mongo 文档，_id 取 room:round，同一回合重复保存即覆盖。
type ReportDoc struct {
	Id        string              `bson:"_id"`
	ReportId  int64               `bson:"report_id"`
	Room      string              `bson:"room"`
	Round     int                 `bson:"round"`
	Report    *entity.RoundReport `bson:"report"`
	CreatedAt time.Time           `bson:"created_at"`
}

func DocID(room string, round int) string {
	return room + ":" + strconv.Itoa(round)
}

func ReportToDoc(r *entity.RoundReport) ReportDoc {
	return ReportDoc{
		Id:        DocID(r.Room, r.Round),
		ReportId:  r.ID,
		Room:      r.Room,
		Round:     r.Round,
		Report:    r,
		CreatedAt: r.CreatedAt,
	}
}

func DocToReport(d ReportDoc) *entity.RoundReport {
	if d.Report == nil {
		return entity.NewRoundReport(d.Room, d.Round)
	}
	return d.Report
}
