package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

const apiDateLayout = "2006-01-02"

func parseApiDate(str string) (time.Time, error) {
	// Портал отдает даты без таймзоны, считаем их UTC
	parsedDate, err := time.ParseInLocation(apiDateLayout, str, time.UTC)
	if err != nil {
		// Если не удалось, пробуем дату со временем
		parsedDate, err = time.ParseInLocation("2006-01-02T15:04:05", str, time.UTC)
		if err != nil {
			parsedDate, err = time.Parse(time.RFC3339, str)
			if err != nil {
				return time.Time{}, fmt.Errorf("failed to parse date: %v", err)
			}
		}
	}

	return parsedDate, nil
}

// ApiDate - календарная дата в формате YYYY-MM-DD
type ApiDate struct {
	Date time.Time
}

func (t *ApiDate) UnmarshalJSON(data []byte) error {
	// Убираем кавычки вокруг строки
	str := string(data[1 : len(data)-1])

	parsedDate, err := parseApiDate(str)
	if err != nil {
		return err
	}

	*t = ApiDate{Date: parsedDate}
	return nil
}

func (t ApiDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format(apiDateLayout))
}

// FlexDate - элемент ответа getSlotDates
// Портал отдает либо голую строку "2025-06-03", либо объект {"date": "2025-06-03"}
type FlexDate struct {
	Date time.Time
}

func (t *FlexDate) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		var wrapped struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}

		parsedDate, err := parseApiDate(wrapped.Date)
		if err != nil {
			return err
		}

		*t = FlexDate{Date: parsedDate}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	parsedDate, err := parseApiDate(str)
	if err != nil {
		return err
	}

	*t = FlexDate{Date: parsedDate}
	return nil
}

func (t FlexDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Date.Format(apiDateLayout))
}
