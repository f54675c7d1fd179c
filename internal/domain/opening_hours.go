package domain

import "time"

// WeekdayHours describes a regular weekday. Day follows time.Weekday numbering
// (0 is Sunday).
type WeekdayHours struct {
	Day    int    `json:"day" bson:"day"`
	Time   string `json:"time,omitempty" bson:"time,omitempty"`
	Closed bool   `json:"closed,omitempty" bson:"closed,omitempty"`
}

type Week struct {
	Mon WeekdayHours `json:"mon" bson:"mon"`
	Tue WeekdayHours `json:"tue" bson:"tue"`
	Wed WeekdayHours `json:"wed" bson:"wed"`
	Thu WeekdayHours `json:"thu" bson:"thu"`
	Fri WeekdayHours `json:"fri" bson:"fri"`
	Sat WeekdayHours `json:"sat" bson:"sat"`
	Sun WeekdayHours `json:"sun" bson:"sun"`
}

func (w Week) Days() []WeekdayHours {
	return []WeekdayHours{w.Mon, w.Tue, w.Wed, w.Thu, w.Fri, w.Sat, w.Sun}
}

// IrregularDay overrides the regular hours for one date, e.g. a holiday.
type IrregularDay struct {
	Name          string `json:"name,omitempty" bson:"name,omitempty"`
	Date          string `json:"date" bson:"date"`
	Time          string `json:"time,omitempty" bson:"time,omitempty"`
	Closed        bool   `json:"closed,omitempty" bson:"closed,omitempty"`
	FormattedDate string `json:"formattedDate,omitempty" bson:"formatted_date,omitempty"`
}

type OpeningHours struct {
	SetID     string         `json:"-" bson:"set_id"`
	Title     string         `json:"title" bson:"title"`
	Days      Week           `json:"days" bson:"days"`
	Irregular []IrregularDay `json:"irregular,omitempty" bson:"irregular,omitempty"`
	UpdatedAt time.Time      `json:"-" bson:"updated_at"`
}
