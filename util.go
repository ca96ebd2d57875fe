package anim

import "strconv"

func itoa(i int) string { return strconv.Itoa(i) }

func sizeString(w, h int) string { return itoa(w) + "x" + itoa(h) }
