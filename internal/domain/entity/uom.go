package entity

// Uom unidad de medida (dato de referencia inmutable).
type Uom struct {
	ID   string
	Code string // kg, bulto, m3, pza...
	Name string
}
