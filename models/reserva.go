package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Reserva is one breakfast seat for one guest on one date. The natural key
// is (habitacion, nombre, apellido, fecha); writes upsert on it.
type Reserva struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Habitacion  int                `json:"habitacion" bson:"habitacion"`
	Nombre      string             `json:"nombre" bson:"nombre"`
	Apellido    string             `json:"apellido" bson:"apellido"`
	Fecha       string             `json:"fecha" bson:"fecha"` // "2006-01-02"
	Turno       string             `json:"turno" bson:"turno"`
	Menu        string             `json:"menu,omitempty" bson:"menu,omitempty"`
	Comentarios string             `json:"comentarios,omitempty" bson:"comentarios,omitempty"`
}

// Huesped mirrors the externally populated lodged-guest collection. Read-only
// from this service.
type Huesped struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Habitacion int                `json:"habitacion" bson:"habitacion"`
	Nombre     string             `json:"nombre" bson:"nombre"`
	Apellido   string             `json:"apellido" bson:"apellido"`
	Hospedado  bool               `json:"hospedado" bson:"hospedado"`
	Grupo      string             `json:"grupo,omitempty" bson:"grupo,omitempty"`
}

// Usuario is an admin account for the back-office endpoints.
type Usuario struct {
	ID       primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID   string             `json:"userid" bson:"userid"`
	Username string             `json:"username" bson:"username"`
	Password string             `json:"-" bson:"password"`
	Role     []string           `json:"role,omitempty" bson:"role,omitempty"`
}

// ReporteTurno is the per-seating block of the daily report.
type ReporteTurno struct {
	Turno         string   `json:"turno" bson:"_id"`
	TotalReservas int      `json:"totalReservas" bson:"totalReservas"`
	TotalSinTacc  int      `json:"totalSinTacc" bson:"totalSinTacc"`
	TotalVegano   int      `json:"totalVegano" bson:"totalVegano"`
	Comentarios   []string `json:"comentarios" bson:"comentarios"`
}

// TotalesDia aggregates the report counters across all seatings.
type TotalesDia struct {
	TotalReservas int `json:"totalReservas"`
	TotalSinTacc  int `json:"totalSinTacc"`
	TotalVegano   int `json:"totalVegano"`
}

// ResultadoFila reports the outcome of one spreadsheet row of a group
// import back to the caller.
type ResultadoFila struct {
	Fila     int    `json:"fila"`
	Nombre   string `json:"nombre"`
	Apellido string `json:"apellido"`
	Estado   string `json:"estado"` // "creada" | "omitida"
	Motivo   string `json:"motivo,omitempty"`
	Dias     int    `json:"dias,omitempty"`
}
