package shift

// Center moves element (0,0) of a rows x cols grid to (rows/2, cols/2),
// wrapping around. Rows may be ragged only if every row has len cols.
func Center[T any](grid [][]T) [][]T {
	rows := len(grid)
	if rows == 0 {
		return nil
	}
	cols := len(grid[0])
	return roll(grid, rows/2, cols/2)
}

// Uncenter is the inverse of Center for any grid size, odd or even.
func Uncenter[T any](grid [][]T) [][]T {
	rows := len(grid)
	if rows == 0 {
		return nil
	}
	cols := len(grid[0])
	return roll(grid, rows-rows/2, cols-cols/2)
}

// roll returns a new grid with out[(i+dy)%rows][(j+dx)%cols] = grid[i][j].
func roll[T any](grid [][]T, dy, dx int) [][]T {
	rows, cols := len(grid), len(grid[0])
	out := make([][]T, rows)
	for i := range rows {
		out[(i+dy)%rows] = make([]T, cols)
	}
	for i, row := range grid {
		dst := out[(i+dy)%rows]
		for j, v := range row {
			dst[(j+dx)%cols] = v
		}
	}
	return out
}
