package knowledge

// DetectBoilerplate 识别跨页重复的页眉页脚
// 每个超过2行的页面贡献首行与末行作为候选；
// 在候选中出现严格超过2次的行视为样板行。
// 2页以内的文档不会产生样板行。
func DetectBoilerplate(pages [][]string) map[string]struct{} {
	var candidates []string
	for _, lines := range pages {
		if len(lines) > 2 {
			candidates = append(candidates, lines[0])
			candidates = append(candidates, lines[len(lines)-1])
		}
	}

	counts := make(map[string]int, len(candidates))
	for _, line := range candidates {
		counts[line]++
	}

	boilerplate := make(map[string]struct{})
	for line, count := range counts {
		if count > 2 {
			boilerplate[line] = struct{}{}
		}
	}
	return boilerplate
}
