package mapper

import "github.com/haugen-io/outbind/internal/domain"

// ToToDoDTO converts a ToDo row to its API representation
func ToToDoDTO(item *domain.ToDoItem) domain.ToDoDTO {
	return domain.ToDoDTO{
		ID:        item.ID,
		Order:     item.Order,
		Title:     item.Title,
		URL:       item.URL,
		Completed: item.Completed,
	}
}

// ToToDoDTOs converts a slice of ToDo rows
func ToToDoDTOs(items []domain.ToDoItem) []domain.ToDoDTO {
	dtos := make([]domain.ToDoDTO, len(items))
	for i := range items {
		dtos[i] = ToToDoDTO(&items[i])
	}
	return dtos
}
