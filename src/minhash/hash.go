package minhash

import (
	"github.com/spaolacci/murmur3"
	"github.com/will-rowe/ntHash"
)

// HashMurmur64 returns the first 64 bits of the seeded MurmurHash3 x64_128 digest of a k-mer
func HashMurmur64(kmer []byte, seed uint32) uint64 {
	h1, _ := murmur3.Sum128WithSeed(kmer, seed)
	return h1
}

// mixSeed decorrelates a seedless hash value using the splitmix64 finaliser
func mixSeed(hv uint64, seed uint32) uint64 {
	z := hv ^ (uint64(seed)+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// hashRun adds the ntHash value of every window in a run of valid, normalised bases
func (s *Sketch) hashRun(run []byte) error {
	hasher, err := ntHash.New(&run, s.ksize)
	if err != nil {
		return err
	}
	for hv := range hasher.Hash(!s.singleStrand) {
		s.AddHash(mixSeed(hv, s.seed))
	}
	return nil
}
