package cluster

import "sort"

// Profile is one labeled observation vector, e.g. a state's weapon-category
// percentage mix. All profiles in one grouping call must share a dimension.
type Profile struct {
	Label  string
	Vector []float64
}

// Group is a set of labels whose profiles merged below the distance threshold.
type Group struct {
	Labels []string
}

// GroupProfiles clusters profiles by Ward linkage over squared Euclidean
// distance and cuts the dendrogram at threshold. Profiles alone below the
// threshold form singleton groups. Output order is deterministic: groups are
// ordered by their first label, labels within a group sorted.
func GroupProfiles(profiles []Profile, threshold float64) []Group {
	switch len(profiles) {
	case 0:
		return nil
	case 1:
		return []Group{{Labels: []string{profiles[0].Label}}}
	}

	vectors := make([][]float64, len(profiles))
	for i, p := range profiles {
		vectors[i] = p.Vector
	}

	dist := pairwiseDistances(vectors)
	merges := wardLinkage(dist, len(vectors))
	assignments := cutDendrogram(merges, len(vectors), threshold)

	byCluster := make(map[int][]string)
	for i, c := range assignments {
		byCluster[c] = append(byCluster[c], profiles[i].Label)
	}

	groups := make([]Group, 0, len(byCluster))
	for _, labels := range byCluster {
		sort.Strings(labels)
		groups = append(groups, Group{Labels: labels})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Labels[0] < groups[j].Labels[0] })
	return groups
}
