package category

import (
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/models"
	"github.com/athebyme/gomarket-platform/services/catalog-service/internal/domain/translation"
)

// BuildResult результат построения дерева категорий
type BuildResult struct {
	// Roots корневые категории в порядке входного списка
	Roots []*models.CategoryNode
	// Count количество узлов в дереве
	Count int
	// Unreached id категорий, до которых нельзя дойти от корня (циклы, повторяющиеся id)
	Unreached []int
}

// BuildTree восстанавливает лес категорий из плоского списка.
//
// Корнем становится категория без родителя, с parent_id = 0 или с parent_id,
// которого нет в списке. Порядок детей совпадает с порядком входного списка.
// Индекс по parent_id делает построение линейным. Каждый id размещается в дереве
// не больше одного раза, поэтому циклы в данных не приводят к бесконечной рекурсии:
// категории, до которых можно дойти только по циклу, попадают в Unreached.
func BuildTree(records []models.CategoryRecord, lang models.Language) BuildResult {
	known := make(map[int]struct{}, len(records))
	for _, record := range records {
		known[record.ID] = struct{}{}
	}

	children := make(map[int][]int, len(records))
	roots := make([]int, 0)
	for i, record := range records {
		parent := normalizeParent(record.ParentID)
		if parent == nil {
			roots = append(roots, i)
			continue
		}
		if _, ok := known[*parent]; !ok {
			roots = append(roots, i)
			continue
		}
		children[*parent] = append(children[*parent], i)
	}

	placed := make(map[int]struct{}, len(records))
	visited := make([]bool, len(records))

	var build func(i int, parent *int) *models.CategoryNode
	build = func(i int, parent *int) *models.CategoryNode {
		record := records[i]
		visited[i] = true
		placed[record.ID] = struct{}{}

		node := &models.CategoryNode{
			ID:       record.ID,
			ParentID: parent,
			Title:    translation.Resolve(record.Name, lang, translation.FieldCategoryTitle),
		}

		for _, child := range children[record.ID] {
			if visited[child] {
				continue
			}
			if _, ok := placed[records[child].ID]; ok {
				continue
			}
			id := record.ID
			node.Children = append(node.Children, build(child, &id))
		}
		return node
	}

	result := BuildResult{Roots: make([]*models.CategoryNode, 0, len(roots))}
	for _, i := range roots {
		if _, ok := placed[records[i].ID]; ok {
			continue
		}
		result.Roots = append(result.Roots, build(i, nil))
	}

	for i, record := range records {
		if visited[i] {
			result.Count++
			continue
		}
		result.Unreached = append(result.Unreached, record.ID)
	}

	return result
}

// Flatten раскладывает лес в плоский список обходом в глубину: родитель всегда идет раньше детей
func Flatten(roots []*models.CategoryNode) []models.Category {
	var out []models.Category

	var walk func(nodes []*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, node := range nodes {
			out = append(out, models.Category{
				ID:       node.ID,
				ParentID: node.ParentID,
				Title:    node.Title,
			})
			walk(node.Children)
		}
	}
	walk(roots)

	return out
}

// normalizeParent приводит parent_id = 0 к отсутствию родителя
func normalizeParent(parentID *int) *int {
	if parentID == nil || *parentID == 0 {
		return nil
	}
	return parentID
}
