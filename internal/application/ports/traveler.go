package ports

import "github.com/jhoicas/Produccion-api/internal/domain/entity"

// TravelerData datos para la hoja de ruta impresa de una orden de trabajo.
type TravelerData struct {
	Job     *entity.JobCard
	Product *entity.Product
}

// TravelerRenderer genera el PDF de la hoja de ruta (picking + línea de tiempo).
type TravelerRenderer interface {
	Render(data TravelerData) ([]byte, error)
}
