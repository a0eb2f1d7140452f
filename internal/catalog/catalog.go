// Package catalog holds the static mapping from train type to its ordered
// inspection block list, plus per-block descriptions and check criteria.
// The data is read-only; lookups for keys outside the closed enumeration are
// programming errors, not recoverable conditions.
package catalog

import (
	"fmt"

	"depotbot/internal/models"
)

// ErrUnknownKey is returned when a train type or block name is not part of
// the catalog.
var ErrUnknownKey = fmt.Errorf("catalog: unknown key")

var trainBlocks = map[models.TrainType][]string{
	models.TypeEP2D: {
		"Тормозное оборудование",
		"Ходовая часть",
		"Электрооборудование",
		"Система управления",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
	},
	models.TypeEP3D: {
		"Тормозное оборудование",
		"Ходовая часть",
		"Электрооборудование",
		"Система управления",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
		"Система кондиционирования",
	},
	models.TypeRA1: {
		"Двигатель",
		"Тормозное оборудование",
		"Ходовая часть",
		"Трансмиссия",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
	},
	models.TypeRA2: {
		"Двигатель",
		"Тормозное оборудование",
		"Ходовая часть",
		"Трансмиссия",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
		"Система управления",
	},
	models.TypeRA3: {
		"Двигатель",
		"Тормозное оборудование",
		"Ходовая часть",
		"Трансмиссия",
		"Двери и окна",
		"Салон",
		"Кабина машиниста",
		"Система управления",
		"Система кондиционирования",
	},
}

var blockDescriptions = map[string]string{
	"Тормозное оборудование":     "Проверка работоспособности тормозной системы, состояния тормозных колодок и дисков",
	"Ходовая часть":              "Проверка состояния колесных пар, букс, рессор и других элементов ходовой части",
	"Электрооборудование":        "Проверка электрических систем, проводки, освещения и электронных компонентов",
	"Система управления":         "Проверка пульта управления, систем безопасности и контроля",
	"Двери и окна":               "Проверка механизмов открывания/закрывания дверей, уплотнителей, стеклопакетов",
	"Салон":                      "Проверка состояния сидений, поручней, напольного покрытия, внутренней отделки",
	"Кабина машиниста":           "Проверка оборудования кабины, приборов, системы связи",
	"Система кондиционирования":  "Проверка работы климатической системы, вентиляции",
	"Двигатель":                  "Проверка состояния двигателя, топливной системы, систем охлаждения и смазки",
	"Трансмиссия":                "Проверка состояния коробки передач, карданной передачи, редукторов",
}

var blockChecklists = map[string][]string{
	"Тормозное оборудование": {
		"Проверить толщину тормозных колодок",
		"Проверить работу компрессора",
		"Проверить герметичность пневмосистемы",
		"Проверить работу стояночного тормоза",
	},
	"Ходовая часть": {
		"Проверить состояние колесных пар",
		"Проверить состояние букс",
		"Проверить состояние рессор",
		"Проверить состояние шкворневых узлов",
	},
	"Электрооборудование": {
		"Проверить работу освещения",
		"Проверить состояние проводки",
		"Проверить работу электрических систем",
		"Проверить состояние аккумуляторных батарей",
	},
	"Система управления": {
		"Проверить работу пульта управления",
		"Проверить работу систем безопасности",
		"Проверить работу информационных систем",
		"Проверить работу радиосвязи",
	},
	"Двери и окна": {
		"Проверить работу механизмов дверей",
		"Проверить состояние уплотнителей",
		"Проверить состояние стеклопакетов",
		"Проверить работу системы блокировки дверей",
	},
	"Салон": {
		"Проверить состояние сидений",
		"Проверить состояние поручней",
		"Проверить состояние напольного покрытия",
		"Проверить состояние внутренней отделки",
	},
	"Кабина машиниста": {
		"Проверить состояние кресла машиниста",
		"Проверить работу контрольных приборов",
		"Проверить работу системы связи",
		"Проверить состояние лобового стекла",
	},
	"Система кондиционирования": {
		"Проверить работу климатической установки",
		"Проверить состояние фильтров",
		"Проверить работу вентиляции",
		"Проверить температурный режим",
	},
	"Двигатель": {
		"Проверить уровень масла",
		"Проверить состояние фильтров",
		"Проверить работу системы охлаждения",
		"Проверить состояние приводных ремней",
	},
	"Трансмиссия": {
		"Проверить уровень масла в КПП",
		"Проверить состояние карданной передачи",
		"Проверить состояние редукторов",
		"Проверить работу механизма переключения передач",
	},
}

// Types lists the train types belonging to a category, in presentation order.
func Types(category models.TrainCategory) []models.TrainType {
	switch category {
	case models.CategoryElektrichka:
		return []models.TrainType{models.TypeEP2D, models.TypeEP3D}
	case models.CategoryRailBus:
		return []models.TrainType{models.TypeRA1, models.TypeRA2, models.TypeRA3}
	}
	return nil
}

// Blocks returns a copy of the ordered block name list for a train type.
func Blocks(trainType models.TrainType) ([]string, error) {
	blocks, ok := trainBlocks[trainType]
	if !ok {
		return nil, fmt.Errorf("%w: train type %q", ErrUnknownKey, trainType)
	}
	out := make([]string, len(blocks))
	copy(out, blocks)
	return out, nil
}

// Description returns the descriptive text for a block name.
func Description(blockName string) (string, error) {
	desc, ok := blockDescriptions[blockName]
	if !ok {
		return "", fmt.Errorf("%w: block %q", ErrUnknownKey, blockName)
	}
	return desc, nil
}

// Checklist returns a copy of the ordered check criteria for a block name.
func Checklist(blockName string) ([]string, error) {
	items, ok := blockChecklists[blockName]
	if !ok {
		return nil, fmt.Errorf("%w: block %q", ErrUnknownKey, blockName)
	}
	out := make([]string, len(items))
	copy(out, items)
	return out, nil
}
